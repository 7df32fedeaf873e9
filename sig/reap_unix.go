//go:build unix

package sig

import (
	"golang.org/x/sys/unix"

	"rush/job"
)

// ReapChildren drains every exited, stopped, or continued child visible
// via a non-blocking waitpid(-1, ...), as spec.md §4.E's reaping
// discipline requires. Call it whenever ChildPending reports true.
func ReapChildren() []job.WaitResult {
	var out []job.WaitResult
	var status unix.WaitStatus
	for {
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil || pid <= 0 {
			return out
		}
		res := job.WaitResult{PID: pid}
		switch {
		case status.Exited():
			res.Exited = true
			res.ExitCode = status.ExitStatus()
		case status.Signaled():
			res.Signaled = true
			res.Signal = int(status.Signal())
		case status.Stopped():
			res.Stopped = true
		case status.Continued():
			res.Continued = true
		default:
			continue
		}
		out = append(out, res)
	}
}
