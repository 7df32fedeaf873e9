// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// rush is an interactive, POSIX-oriented command shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"rush/interp"
	"rush/syntax"
	rushterm "rush/term"
)

var (
	command = flag.String("c", "", "command to be executed")
	login   = flag.Bool("login", false, "run as a login shell, sourcing ~/.rush_profile first")
	noRC    = flag.Bool("no-rc", false, "skip sourcing ~/.rushrc")
	version = flag.Bool("version", false, "print version and exit")
)

const rushVersion = "rush, POSIX-oriented shell core"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--login] [--no-rc] [-c string | file [args...]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(rushVersion)
		return
	}
	err := runAll()
	var es interp.ExitStatus
	if errors.As(err, &es) {
		os.Exit(int(es))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAll() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := *command == "" && flag.NArg() == 0 && term.IsTerminal(int(os.Stdin.Fd()))

	opts := []interp.RunnerOption{
		interp.Interactive(interactive),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
	}
	if interactive {
		ctl := rushterm.New(os.Stdin)
		if err := ctl.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: warning: job control unavailable: %v\n", os.Args[0], err)
		} else {
			opts = append(opts, interp.TermController(ctl))
		}
	}

	r, err := interp.New(opts...)
	if err != nil {
		return err
	}

	if err := sourceRCFiles(ctx, r, interactive); err != nil {
		return err
	}

	if *command != "" {
		return run(ctx, r, strings.NewReader(*command), "")
	}
	if flag.NArg() == 0 {
		if interactive {
			return runInteractive(ctx, r, os.Stdin, os.Stdout)
		}
		return run(ctx, r, os.Stdin, "")
	}
	for _, path := range flag.Args() {
		if err := runPath(ctx, r, path); err != nil {
			return err
		}
	}
	return nil
}

// sourceRCFiles implements the --login/--no-rc invocation surface: a login
// shell sources ~/.rush_profile before the interactive/script body runs,
// and any interactive shell sources ~/.rushrc unless --no-rc was given.
// Both files are plain shell source read through the same parser and
// executor as any other script; there is no separate config schema.
func sourceRCFiles(ctx context.Context, r *interp.Runner, interactive bool) error {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	if *login {
		if err := sourceIfExists(ctx, r, filepath.Join(home, ".rush_profile")); err != nil {
			return err
		}
	}
	if !*noRC && interactive {
		if err := sourceIfExists(ctx, r, filepath.Join(home, ".rushrc")); err != nil {
			return err
		}
	}
	return nil
}

func sourceIfExists(ctx context.Context, r *interp.Runner, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return run(ctx, r, f, path)
}

func run(ctx context.Context, r *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.Parse(reader, name, syntax.ParseComments)
	if err != nil {
		return err
	}
	r.Reset()
	return r.Run(ctx, prog)
}

func runPath(ctx context.Context, r *interp.Runner, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return run(ctx, r, f, path)
}

// runInteractive reads logical units of input, growing the buffer across
// lines while the accumulated text fails to parse (the classic way of
// approximating "incomplete statement, wants a continuation line" without a
// dedicated incremental parser), then runs each parsed unit immediately so
// that earlier statements can affect what later ones see.
func runInteractive(ctx context.Context, r *interp.Runner, stdin io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	var buf strings.Builder
	fmt.Fprint(stdout, "$ ")
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')

		prog, err := syntax.Parse(strings.NewReader(buf.String()), "", syntax.ParseComments)
		if err != nil {
			fmt.Fprint(stdout, "> ")
			continue
		}
		buf.Reset()

		r.Run(ctx, prog)
		if r.Exited() {
			return nil
		}
		fmt.Fprint(stdout, "$ ")
	}
	return scanner.Err()
}
