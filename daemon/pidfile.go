package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// writePIDFile atomically writes the current process's PID to path,
// using renameio so a crash mid-write never leaves a partially written
// PID file for a later `rushd status` to misread.
func writePIDFile(path string) error {
	return renameio.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// ReadPIDFile reads and parses a PID file written by writePIDFile.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("daemon: malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// IsRunning reports whether the process named by the PID file is alive,
// by sending it signal 0.
func IsRunning(pidPath string) (pid int, alive bool) {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	if err := proc.Signal(syscallSig0()); err != nil {
		return pid, false
	}
	return pid, true
}
