// rushd is the optional warm-interpreter daemon: a long-lived server
// that executes -c style requests without paying process startup cost
// each time, per spec.md §4.H.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"rush/daemon"
	"rush/expand"
	"rush/interp"
	"rush/internal/perf"
	"rush/syntax"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "start":
		err = cmdStart(os.Args[2:])
	case "stop":
		err = cmdStop(os.Args[2:])
	case "status":
		err = cmdStatus(os.Args[2:])
	case "restart":
		cmdStop(os.Args[2:]) // best-effort; fine if it wasn't running
		err = cmdStart(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s start|stop|status|restart\n", os.Args[0])
}

func runtimeDir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "rush"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rush"), nil
}

func socketAndPIDPaths() (sockPath, pidPath string, err error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", "", err
	}
	return filepath.Join(dir, "daemon.sock"), filepath.Join(dir, "daemon.pid"), nil
}

func poolSize() int {
	if v := os.Getenv("RUSH_DISABLE_POOL"); v == "1" || v == "true" {
		return 1
	}
	if v := os.Getenv("RUSH_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 4
}

func cmdStart(args []string) error {
	sockPath, pidPath, err := socketAndPIDPaths()
	if err != nil {
		return err
	}
	if pid, alive := daemon.IsRunning(pidPath); alive {
		return fmt.Errorf("rushd: already running (pid %d)", pid)
	}

	logger, _ := zap.NewProduction()
	sugar := logger.Sugar()
	stats := &perf.Stats{}

	srv := daemon.NewServer(daemon.Config{
		SocketPath: sockPath,
		PIDPath:    pidPath,
		PoolSize:   poolSize(),
		Logger:     sugar,
		Handle:     sessionHandler(stats),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("rushd starting", "socket", sockPath, "pool_size", poolSize())
	return srv.Run(ctx)
}

func sessionHandler(stats *perf.Stats) daemon.SessionHandler {
	return func(ctx context.Context, init daemon.SessionInit, conn net.Conn) (int, error) {
		stdinR, stdinW := io.Pipe()
		go relayStdin(conn, stdinW)

		stdout := &frameWriter{conn: conn, tag: daemon.TagStdout, msgID: init.MsgID}
		stderr := &frameWriter{conn: conn, tag: daemon.TagStderr, msgID: init.MsgID}

		runner, err := interp.New(
			interp.Dir(init.WorkingDir),
			interp.Env(expand.ListEnviron(envSlice(init.Env)...)),
			interp.StdIO(stdinR, stdout, stderr),
		)
		if err != nil {
			return 1, err
		}

		timer := perf.Start(stats, perf.Execute)
		defer func() { timer.Finish(); stats.IncCommand() }()

		if len(init.Args) == 0 {
			return 0, nil
		}
		src := init.Args[0]
		prog, err := syntax.Parse(strings.NewReader(src), "", syntax.ParseComments)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2, nil
		}
		if err := runner.Run(ctx, prog); err != nil {
			var es interp.ExitStatus
			if errors.As(err, &es) {
				return int(es), nil
			}
			return 1, nil
		}
		return 0, nil
	}
}

func envSlice(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func relayStdin(conn net.Conn, w *io.PipeWriter) {
	for {
		tag, payload, err := daemon.ReadFrame(conn)
		if err != nil {
			w.Close()
			return
		}
		switch tag {
		case daemon.TagStdin:
			_, data, err := daemon.DecodeData(payload)
			if err == nil {
				w.Write(data)
			}
		case daemon.TagStdinClose:
			w.Close()
			return
		}
	}
}

type frameWriter struct {
	conn  net.Conn
	tag   daemon.Tag
	msgID uint64
}

func (f *frameWriter) Write(p []byte) (int, error) {
	if err := daemon.WriteFrame(f.conn, f.tag, daemon.EncodeData(f.msgID, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func cmdStop(args []string) error {
	_, pidPath, err := socketAndPIDPaths()
	if err != nil {
		return err
	}
	pid, alive := daemon.IsRunning(pidPath)
	if !alive {
		return fmt.Errorf("rushd: not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

func cmdStatus(args []string) error {
	_, pidPath, err := socketAndPIDPaths()
	if err != nil {
		return err
	}
	pid, alive := daemon.IsRunning(pidPath)
	if !alive {
		fmt.Println("rushd: not running")
		return nil
	}
	fmt.Printf("rushd: running (pid %d)\n", pid)
	return nil
}
