//go:build unix

// Package sig implements the shell's signal core: a self-pipe style
// bridge between asynchronous signal delivery and the single-threaded
// cooperative main loop described in spec.md §4.G.
//
// Handlers do nothing beyond recording state and waking the main loop;
// all user-visible effects (trap callbacks, job-table updates) happen
// from ordinary goroutine context at the loop's "safe points".
package sig

import (
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Core funnels SIGINT/SIGTSTP/SIGTERM/SIGHUP/SIGCHLD into atomic flags
// and a wake-up channel. Go's os/signal already delivers signals over a
// channel rather than from a true async-signal-safe handler, but this
// type still plays the self-pipe's role: it is the single, buffered,
// non-blocking-safe rendezvous point the main loop selects on, keeping
// the handler side (the goroutine started by Start) trivial.
type Core struct {
	sigc chan os.Signal
	wake chan struct{}

	interrupted  atomic.Bool
	terminalStop atomic.Bool
	terminated   atomic.Bool
	signalNumber atomic.Int32
	childPending atomic.Bool

	done chan struct{}
}

// New creates a Core. Call Start to begin listening.
func New() *Core {
	return &Core{
		sigc: make(chan os.Signal, 16),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start registers the shell's signal set and begins funneling them into
// Core's flags. It returns a stop function that undoes the registration.
func (c *Core) Start() (stop func()) {
	signal.Notify(c.sigc,
		unix.SIGINT, unix.SIGTSTP, unix.SIGTERM, unix.SIGHUP,
		unix.SIGCHLD, unix.SIGTTIN, unix.SIGTTOU,
	)
	go c.loop()
	return func() {
		signal.Stop(c.sigc)
		close(c.done)
	}
}

func (c *Core) loop() {
	for {
		select {
		case s := <-c.sigc:
			c.record(s)
			c.notify()
		case <-c.done:
			return
		}
	}
}

func (c *Core) record(s os.Signal) {
	switch s {
	case unix.SIGINT:
		c.interrupted.Store(true)
		c.signalNumber.Store(int32(unix.SIGINT))
	case unix.SIGTSTP:
		c.terminalStop.Store(true)
		c.signalNumber.Store(int32(unix.SIGTSTP))
	case unix.SIGTERM:
		c.terminated.Store(true)
		c.signalNumber.Store(int32(unix.SIGTERM))
	case unix.SIGHUP:
		c.terminated.Store(true)
		c.signalNumber.Store(int32(unix.SIGHUP))
	case unix.SIGCHLD:
		c.childPending.Store(true)
	}
}

func (c *Core) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Wake returns the channel the main loop selects on alongside its
// blocking reads, so a pending signal always interrupts them promptly.
func (c *Core) Wake() <-chan struct{} { return c.wake }

// Interrupted reports and clears the SIGINT flag.
func (c *Core) Interrupted() bool { return c.interrupted.Swap(false) }

// TerminalStop reports and clears the SIGTSTP flag.
func (c *Core) TerminalStop() bool { return c.terminalStop.Swap(false) }

// Terminated reports whether SIGTERM/SIGHUP has been received. Unlike
// the other flags this is sticky: once the shell is told to terminate,
// later checks must keep seeing it.
func (c *Core) Terminated() bool { return c.terminated.Load() }

// SignalNumber returns the last signal number recorded by record.
func (c *Core) SignalNumber() int { return int(c.signalNumber.Load()) }

// ChildPending reports and clears the SIGCHLD flag; true means the
// caller should drain waitpid(-1, WNOHANG|WUNTRACED|WCONTINUED) and
// feed the results into job.Manager.UpdateAll.
func (c *Core) ChildPending() bool { return c.childPending.Swap(false) }
