// Package perf tracks per-phase timing of the commands the daemon runs,
// grounded on the original implementation's startup-latency
// self-measurement helper. The counters live in the daemon process only;
// `rushd status` does not print them.
package perf

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Phase identifies one of the pipeline stages timed per command.
type Phase int

const (
	Lex Phase = iota
	Parse
	Expand
	Execute
	nPhases
)

// Stats accumulates nanoseconds spent per phase across every command a
// worker has run, used for the daemon's <10ms warm-path goal.
type Stats struct {
	ns    [nPhases]atomic.Int64
	count atomic.Int64
}

// Record adds elapsed to phase's running total.
func (s *Stats) Record(phase Phase, elapsed time.Duration) {
	s.ns[phase].Add(elapsed.Nanoseconds())
}

// IncCommand marks one completed command, for the per-command averages
// Report divides by.
func (s *Stats) IncCommand() { s.count.Add(1) }

// Reset zeroes every counter.
func (s *Stats) Reset() {
	for i := range s.ns {
		s.ns[i].Store(0)
	}
	s.count.Store(0)
}

// Report renders a human-readable summary, or "" if no commands have
// run yet.
func (s *Stats) Report() string {
	count := s.count.Load()
	if count == 0 {
		return ""
	}
	names := [nPhases]string{"lex", "parse", "expand", "execute"}
	var total int64
	for i := range s.ns {
		total += s.ns[i].Load()
	}
	out := fmt.Sprintf("rush performance stats (%d commands):\n", count)
	for i, name := range names {
		ns := s.ns[i].Load()
		pct := 0.0
		if total > 0 {
			pct = float64(ns) / float64(total) * 100
		}
		out += fmt.Sprintf("  %-8s%7.2fus (%5.1f%%)\n", name, float64(ns)/float64(count)/1000, pct)
	}
	out += fmt.Sprintf("  %-8s%7.2fus per command\n", "total", float64(total)/float64(count)/1000)
	return out
}

// Timer measures one phase's duration; call Finish when the phase ends.
type Timer struct {
	start time.Time
	stats *Stats
	phase Phase
}

// Start begins timing phase against stats.
func Start(stats *Stats, phase Phase) Timer {
	return Timer{start: time.Now(), stats: stats, phase: phase}
}

// Finish records the elapsed time since Start.
func (t Timer) Finish() {
	if t.stats != nil {
		t.stats.Record(t.phase, time.Since(t.start))
	}
}
