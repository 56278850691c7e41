// Package schedtest provides a deterministic domain.Scheduler for tests.
package schedtest

import (
	"time"

	"github.com/pscheid92/swipedeck/internal/domain"
)

type task struct {
	due       time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

// Manual runs scheduled callbacks only when the test advances its virtual time.
type Manual struct {
	now   time.Duration
	seq   uint64
	tasks []*task
}

func New() *Manual { return &Manual{} }

func (m *Manual) Schedule(d time.Duration, fn func()) domain.CancelFunc {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &task{due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() { t.cancelled = true }
}

// Advance moves virtual time forward by d, running every callback that falls due
// in (due, sequence) order, including callbacks scheduled by earlier ones.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		if t.due > m.now {
			m.now = t.due
		}
		t.fn()
	}
	m.now = target
}

// Flush runs callbacks that are already due, such as zero-delay deferrals.
func (m *Manual) Flush() { m.Advance(0) }

// Pending counts callbacks that are neither run nor cancelled.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) popDue(target time.Duration) *task {
	best := -1
	for i, t := range m.tasks {
		if t.cancelled || t.due > target {
			continue
		}
		if best < 0 || t.due < m.tasks[best].due || (t.due == m.tasks[best].due && t.seq < m.tasks[best].seq) {
			best = i
		}
	}
	if best < 0 {
		m.prune()
		return nil
	}
	t := m.tasks[best]
	m.tasks = append(m.tasks[:best], m.tasks[best+1:]...)
	return t
}

func (m *Manual) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
}
