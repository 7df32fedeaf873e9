//go:build !unix

// Package term owns the terminal: foreground process-group transfer and
// save/restore of terminal modes around foreground pipelines, per
// spec.md §4.F.
package term

import "os"

// Controller is a no-op stand-in: process-group based job control is a
// POSIX concept and isn't supported on this platform.
type Controller struct{}

// New returns a Controller bound to f. On this platform it never
// considers itself attached to a terminal.
func New(f *os.File) *Controller { return &Controller{} }

// IsTerminal always reports false on this platform.
func (c *Controller) IsTerminal() bool { return false }

// Init is a no-op on this platform.
func (c *Controller) Init() error { return nil }

// Foreground is a no-op on this platform: there is no process group to
// hand the terminal to.
func (c *Controller) Foreground(pgid int) (restore func(), err error) {
	return func() {}, nil
}

// ShellPGID always reports 0 on this platform.
func (c *Controller) ShellPGID() int { return 0 }
