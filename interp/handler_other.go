//go:build !unix

package interp

import (
	"os"
	"os/exec"
)

// prepareCommand is a no-op: process groups are a POSIX concept, and
// job control is not supported on this platform.
func prepareCommand(cmd *exec.Cmd) {}

// interruptCommand signals just the one process, since there is no
// process group to reach on this platform.
func interruptCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Interrupt)
}

// killCommand kills just the one process, since there is no process
// group to reach on this platform.
func killCommand(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
