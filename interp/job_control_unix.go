//go:build unix

package interp

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"rush/job"
)

var signalsByName = map[string]unix.Signal{
	"HUP": unix.SIGHUP, "INT": unix.SIGINT, "QUIT": unix.SIGQUIT,
	"ILL": unix.SIGILL, "TRAP": unix.SIGTRAP, "ABRT": unix.SIGABRT,
	"KILL": unix.SIGKILL, "BUS": unix.SIGBUS, "FPE": unix.SIGFPE,
	"SEGV": unix.SIGSEGV, "PIPE": unix.SIGPIPE, "ALRM": unix.SIGALRM,
	"TERM": unix.SIGTERM, "USR1": unix.SIGUSR1, "USR2": unix.SIGUSR2,
	"CHLD": unix.SIGCHLD, "CONT": unix.SIGCONT, "STOP": unix.SIGSTOP,
	"TSTP": unix.SIGTSTP, "TTIN": unix.SIGTTIN, "TTOU": unix.SIGTTOU,
}

// resolveSignal parses a -SIG option's argument: a bare number, a
// bash-style name ("TERM"), or the full POSIX name ("SIGTERM").
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

// killPID signals a PID directly, for kill targets that are not job specs.
func killPID(pid, sig int) error {
	return unix.Kill(pid, unix.Signal(sig))
}

func jobTerminate(m *job.Manager, id int) error { return m.Terminate(id) }

func jobSignal(m *job.Manager, id, sig int) error {
	return m.Signal(id, unix.Signal(sig))
}

func jobContFg(m *job.Manager, id int) (int, error) { return m.ContFg(id) }

func jobContBg(m *job.Manager, id int) error { return m.ContBg(id) }
