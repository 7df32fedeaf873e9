package job

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestAddAndList(t *testing.T) {
	c := qt.New(t)
	m := NewManager()

	id1 := m.AddJob(100, 100, "sleep 10")
	id2 := m.AddJob(200, 200, "make -j4")
	c.Assert(id1, qt.Equals, 1)
	c.Assert(id2, qt.Equals, 2)

	jobs := m.List(ListFilter{AnyStatus: true})
	c.Assert(jobs, qt.HasLen, 2)
	c.Assert(jobs[0].Command, qt.Equals, "sleep 10")
	c.Assert(jobs[1].Command, qt.Equals, "make -j4")
}

func TestUpdateAllExited(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	id := m.AddJob(100, 100, "sleep 10")

	m.UpdateAll([]WaitResult{{PID: 100, Exited: true, ExitCode: 7}})

	j, ok := m.Get(id)
	c.Assert(ok, qt.IsTrue)
	c.Assert(j.Status, qt.Equals, Done)
	c.Assert(j.ExitCode, qt.Equals, 7)
}

func TestUpdateAllSignaled(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	id := m.AddJob(100, 100, "sleep 10")

	m.UpdateAll([]WaitResult{{PID: 100, Signaled: true, Signal: 9}})

	j, _ := m.Get(id)
	c.Assert(j.Status, qt.Equals, Done)
	c.Assert(j.Signaled, qt.IsTrue)
	c.Assert(j.ExitCode, qt.Equals, 137)
}

func TestParseSpec(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	m.AddJob(100, 100, "make build")
	id2 := m.AddJob(200, 200, "make test")

	j, err := m.ParseSpec("%%")
	c.Assert(err, qt.IsNil)
	c.Assert(j.ID, qt.Equals, id2)

	j, err = m.ParseSpec("%1")
	c.Assert(err, qt.IsNil)
	c.Assert(j.ID, qt.Equals, 1)

	_, err = m.ParseSpec("%make")
	c.Assert(err, qt.ErrorMatches, "job: ambiguous job spec.*")

	j, err = m.ParseSpec("%?test")
	c.Assert(err, qt.IsNil)
	c.Assert(j.ID, qt.Equals, id2)

	_, err = m.ParseSpec("%99")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestSetPGIDOnlyFirstWins(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	id := m.AddJob(0, 0, "sleep 10 &")

	m.SetPGID(id, 4242, 4242)
	m.SetPGID(id, 9999, 9999) // ignored: PGID already set

	j, _ := m.Get(id)
	c.Assert(j.PGID, qt.Equals, 4242)
}

func TestCompleteMarksDone(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	id := m.AddJob(0, 0, "{ echo hi; } &")

	select {
	case <-m.jobs[id].WaitChan():
		c.Fatal("job should not be done yet")
	default:
	}

	m.Complete(id, 3, false, 0)

	j, _ := m.Get(id)
	c.Assert(j.Status, qt.Equals, Done)
	c.Assert(j.ExitCode, qt.Equals, 3)
	<-j.WaitChan() // must not block
}

func TestReapNotifiedOnly(t *testing.T) {
	c := qt.New(t)
	m := NewManager()
	id := m.AddJob(100, 100, "true")
	m.UpdateAll([]WaitResult{{PID: 100, Exited: true}})

	m.Reap()
	_, ok := m.Get(id)
	c.Assert(ok, qt.IsTrue, qt.Commentf("job should survive until notified once"))

	pending := m.PendingNotifications()
	c.Assert(pending, qt.HasLen, 1)

	m.Reap()
	_, ok = m.Get(id)
	c.Assert(ok, qt.IsFalse)
}
