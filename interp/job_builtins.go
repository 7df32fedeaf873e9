// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"strconv"
	"strings"

	"rush/job"
)

// jobsBuiltin implements the "jobs" built-in: listing the shell's job
// table per spec.md §4.E. "-l" adds the leader PID, "-p" prints PIDs only.
func (r *Runner) jobsBuiltin(args []string) uint8 {
	long, pidsOnly := false, false
	for _, a := range args {
		switch a {
		case "-l":
			long = true
		case "-p":
			pidsOnly = true
		default:
			r.errf("jobs: invalid option %q\n", a)
			return 2
		}
	}
	for _, j := range r.Jobs.List(job.ListFilter{AnyStatus: true}) {
		switch {
		case pidsOnly:
			r.outf("%d\n", j.LeaderPID)
		case long:
			r.outf("[%d]  %d  %-8s %s\n", j.ID, j.LeaderPID, j.Status, j.Command)
		default:
			r.outf("[%d]  %-8s %s\n", j.ID, j.Status, j.Command)
		}
	}
	r.Jobs.Reap()
	return 0
}

// fgBuiltin implements "fg %spec": it resumes a stopped job (if any) and
// blocks until it next becomes Done, returning its exit code as the
// built-in's own, matching a real foreground wait. When the Runner has a
// [term.Controller] attached, the job's process group is given the
// controlling terminal for the duration of the wait, and the shell takes
// it back once the wait ends, that is, once the job is Done.
func (r *Runner) fgBuiltin(spec string) uint8 {
	j, err := r.Jobs.ParseSpec(spec)
	if err != nil {
		r.errf("fg: %v\n", err)
		return 1
	}
	r.outf("%s\n", j.Command)

	var restore func()
	if r.Term != nil && j.PGID != 0 {
		restore, err = r.Term.Foreground(j.PGID)
		if err != nil {
			r.errf("fg: %v\n", err)
			restore = nil
		}
	}
	code, err := jobContFg(r.Jobs, j.ID)
	if restore != nil {
		restore()
	}
	if err != nil {
		r.errf("fg: %v\n", err)
		return 1
	}
	return uint8(code)
}

// bgBuiltin implements "bg %spec": it resumes a stopped job without
// waiting for it, matching the shell resuming a suspended pipeline in the
// background.
func (r *Runner) bgBuiltin(spec string) uint8 {
	j, err := r.Jobs.ParseSpec(spec)
	if err != nil {
		r.errf("bg: %v\n", err)
		return 1
	}
	if err := jobContBg(r.Jobs, j.ID); err != nil {
		r.errf("bg: %v\n", err)
		return 1
	}
	r.outf("[%d]+ %s &\n", j.ID, j.Command)
	return 0
}

// killBuiltin implements "kill [-sig] %job|pid ...". A %job target is
// signalled through the job table's process group; a bare PID is
// signalled directly, for processes this shell never backgrounded itself.
func (r *Runner) killBuiltin(args []string) uint8 {
	sig := 15 // SIGTERM
	rest := args
	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		name := args[0][1:]
		n, ok := resolveSignal(name)
		if !ok {
			r.errf("kill: invalid signal specification %q\n", args[0])
			return 1
		}
		sig = n
		rest = args[1:]
	}
	if len(rest) == 0 {
		r.errf("kill: usage: kill [-sig] pid|%%job ...\n")
		return 2
	}

	var code uint8
	for _, spec := range rest {
		if strings.HasPrefix(spec, "%") {
			j, err := r.Jobs.ParseSpec(spec)
			if err != nil {
				r.errf("kill: %v\n", err)
				code = 1
				continue
			}
			if err := jobSignal(r.Jobs, j.ID, sig); err != nil {
				r.errf("kill: %v\n", err)
				code = 1
			}
			continue
		}
		pid, err := strconv.Atoi(spec)
		if err != nil {
			r.errf("kill: invalid pid %q\n", spec)
			code = 1
			continue
		}
		if err := killPID(pid, sig); err != nil {
			r.errf("kill: (%d) - %v\n", pid, err)
			code = 1
		}
	}
	return code
}
