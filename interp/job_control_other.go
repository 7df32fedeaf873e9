//go:build !unix

package interp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"rush/job"
)

var signalsByName = map[string]syscall.Signal{
	"HUP": syscall.SIGHUP, "INT": syscall.SIGINT, "QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL, "TERM": syscall.SIGTERM,
}

func resolveSignal(name string) (int, bool) {
	if n, err := strconv.Atoi(name); err == nil {
		return n, true
	}
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	if sig, ok := signalsByName[name]; ok {
		return int(sig), true
	}
	return 0, false
}

func killPID(pid, sig int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.Signal(sig))
}

var errNoJobControl = fmt.Errorf("job control is not supported on this platform")

func jobTerminate(m *job.Manager, id int) error { return errNoJobControl }

func jobSignal(m *job.Manager, id, sig int) error { return errNoJobControl }

func jobContFg(m *job.Manager, id int) (int, error) { return 0, errNoJobControl }

func jobContBg(m *job.Manager, id int) error { return errNoJobControl }
