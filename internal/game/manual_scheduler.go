package game

import (
	"slices"
	"time"
)

type manualTask struct {
	at  time.Duration
	seq int
	fn  func()
}

// ManualScheduler is a deterministic Scheduler for tests. Time only moves
// when Advance or Drain is called; Do runs its work immediately and queues
// done at the current instant. Not safe for concurrent use.
type ManualScheduler struct {
	now   time.Duration
	seq   int
	queue []manualTask
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) After(d time.Duration, fn func()) {
	m.seq++
	m.queue = append(m.queue, manualTask{at: m.now + max(d, 0), seq: m.seq, fn: fn})
}

func (m *ManualScheduler) Do(work func(), done func()) {
	work()
	m.After(0, done)
}

// Elapsed is the virtual time that has passed.
func (m *ManualScheduler) Elapsed() time.Duration {
	return m.now
}

// Pending is the number of queued continuations.
func (m *ManualScheduler) Pending() int {
	return len(m.queue)
}

func (m *ManualScheduler) next() (manualTask, bool) {
	if len(m.queue) == 0 {
		return manualTask{}, false
	}

	i := 0
	for j, t := range m.queue {
		if t.at < m.queue[i].at || (t.at == m.queue[i].at && t.seq < m.queue[i].seq) {
			i = j
		}
	}

	t := m.queue[i]
	m.queue = slices.Delete(m.queue, i, i+1)

	return t, true
}

// Advance moves virtual time forward by d, running every continuation that
// falls due in order, including ones they schedule along the way.
func (m *ManualScheduler) Advance(d time.Duration) {
	target := m.now + d

	for {
		t, ok := m.next()
		if !ok {
			break
		}
		if t.at > target {
			m.queue = append(m.queue, t)
			break
		}
		m.now = t.at
		t.fn()
	}

	m.now = target
}

// Drain runs queued continuations until none remain or limit have run, and
// returns how many ran.
func (m *ManualScheduler) Drain(limit int) int {
	ran := 0
	for ran < limit {
		t, ok := m.next()
		if !ok {
			break
		}
		m.now = max(m.now, t.at)
		t.fn()
		ran++
	}

	return ran
}
