//go:build unix

// Package term owns the terminal: foreground process-group transfer and
// save/restore of terminal modes around foreground pipelines, per
// spec.md §4.F.
package term

import (
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// Controller grabs and releases the controlling terminal on behalf of
// one interactive shell instance.
type Controller struct {
	fd        int
	enabled   bool
	shellPGID int
}

// New returns a Controller bound to f (typically os.Stdin). Job control
// is only meaningful when f is actually a terminal.
func New(f *os.File) *Controller {
	return &Controller{fd: int(f.Fd())}
}

// IsTerminal reports whether the bound fd is a terminal.
func (c *Controller) IsTerminal() bool { return xterm.IsTerminal(c.fd) }

// Init performs the startup dance from spec.md §4.F: wait until the
// shell is in the foreground, move it into its own process group,
// ignore the job-control signals, and take the terminal.
func (c *Controller) Init() error {
	if !c.IsTerminal() {
		return nil
	}

	for {
		pgid, err := unix.IoctlGetInt(c.fd, unix.TIOCGPGRP)
		if err != nil {
			return fmt.Errorf("term: get foreground pgrp: %w", err)
		}
		if pgid == unix.Getpgrp() {
			break
		}
		if err := unix.Kill(0, unix.SIGTTIN); err != nil {
			return fmt.Errorf("term: signal self: %w", err)
		}
	}

	signal.Ignore(unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU)

	shellPID := unix.Getpid()
	if err := unix.Setpgid(shellPID, shellPID); err != nil {
		return fmt.Errorf("term: setpgid: %w", err)
	}
	c.shellPGID = shellPID

	if err := c.setForeground(shellPID); err != nil {
		return err
	}
	c.enabled = true
	return nil
}

// setForeground calls tcsetpgrp(fd, pgid) via the TIOCSPGRP ioctl.
func (c *Controller) setForeground(pgid int) error {
	return unix.IoctlSetPointerInt(c.fd, unix.TIOCSPGRP, pgid)
}

// Foreground transfers the terminal to pgid for the duration of a
// foreground pipeline, saving and restoring terminal modes around it.
// The returned restore function must be called once the pipeline (or
// its wait) completes, on both success and failure paths.
func (c *Controller) Foreground(pgid int) (restore func(), err error) {
	if !c.enabled {
		return func() {}, nil
	}

	var state *xterm.State
	state, err = xterm.GetState(c.fd)
	if err != nil {
		return func() {}, fmt.Errorf("term: save state: %w", err)
	}
	if err := c.setForeground(pgid); err != nil {
		return func() {}, fmt.Errorf("term: set foreground %d: %w", pgid, err)
	}

	return func() {
		_ = c.setForeground(c.shellPGID)
		_ = xterm.Restore(c.fd, state)
	}, nil
}

// ShellPGID returns the shell's own process group, the target of
// restore operations.
func (c *Controller) ShellPGID() int { return c.shellPGID }
