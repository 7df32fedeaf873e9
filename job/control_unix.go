//go:build unix

package job

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Terminate sends SIGTERM to the job's process group, per the shell's
// "kill %spec" built-in.
func (m *Manager) Terminate(id int) error {
	return m.Signal(id, unix.SIGTERM)
}

// Signal sends an arbitrary signal to the job's process group, backing
// the "kill -SIG %spec" built-in form. Jobs with no recorded process
// group (a backgrounded statement that never started an external command)
// cannot be signalled this way, since PGID 0 would address the caller's
// own process group instead.
func (m *Manager) Signal(id int, sig unix.Signal) error {
	j, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("job: no such job %d", id)
	}
	if j.PGID == 0 {
		return fmt.Errorf("job: %d has no process group to signal", id)
	}
	if err := unix.Kill(-j.PGID, sig); err != nil {
		return fmt.Errorf("job: signal %d: %w", id, err)
	}
	return nil
}

// Stop sends SIGTSTP to the job's process group, as the "bg"/terminal
// stop path does when the shell voluntarily suspends a job.
func (m *Manager) Stop(id int) error {
	if err := m.Signal(id, unix.SIGTSTP); err != nil {
		return err
	}
	m.mu.Lock()
	if j, ok := m.jobs[id]; ok {
		j.Status = Stopped
	}
	m.mu.Unlock()
	return nil
}

// continueJob sends SIGCONT to the job's process group and marks it
// Running. ContFg additionally expects the caller to have already
// transferred the terminal via package term before calling this.
func (m *Manager) continueJob(id int) (*Job, error) {
	j, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("job: no such job %d", id)
	}
	if err := unix.Kill(-j.PGID, unix.SIGCONT); err != nil {
		return nil, fmt.Errorf("job: continue %d: %w", id, err)
	}
	m.mu.Lock()
	j.Status = Running
	m.previous = m.current
	m.current = id
	m.mu.Unlock()
	return j, nil
}

// ContFg resumes a stopped job in the foreground: the caller is
// responsible for the tcsetpgrp dance (package term) around this call,
// then blocks here until the job is Done; a job that stops again does
// not end the wait. A job that is already running is left alone and simply waited on, so
// "fg" on a job backgrounded with "&" (never stopped) still works.
func (m *Manager) ContFg(id int) (exitCode int, err error) {
	j, ok := m.Get(id)
	if !ok {
		return 0, fmt.Errorf("job: no such job %d", id)
	}
	if j.Status == Stopped {
		if j, err = m.continueJob(id); err != nil {
			return 0, err
		}
	} else {
		m.mu.Lock()
		m.previous = m.current
		m.current = id
		m.mu.Unlock()
	}
	return m.Wait(j.ID)
}

// ContBg resumes a stopped job in the background; it does not wait and
// does not transfer the terminal. It is a no-op for a job that is not
// currently Stopped.
func (m *Manager) ContBg(id int) error {
	j, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("job: no such job %d", id)
	}
	if j.Status != Stopped {
		return nil
	}
	_, err := m.continueJob(id)
	return err
}

// Wait blocks until job id reaches Done and returns its exit code. If
// id is 0, it waits for every currently tracked job.
func (m *Manager) Wait(id int) (int, error) {
	if id == 0 {
		return m.waitAll()
	}
	j, ok := m.Get(id)
	if !ok {
		return 0, fmt.Errorf("job: no such job %d", id)
	}
	<-j.WaitChan()
	return j.ExitCode, nil
}

func (m *Manager) waitAll() (int, error) {
	m.mu.Lock()
	ids := make([]int, len(m.order))
	copy(ids, m.order)
	m.mu.Unlock()

	last := 0
	for _, id := range ids {
		if j, ok := m.Get(id); ok {
			code, err := m.Wait(j.ID)
			if err != nil {
				continue
			}
			last = code
		}
	}
	return last, nil
}
