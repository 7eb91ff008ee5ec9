package looper

import (
	"sync"
	"time"
)

// Manual is a Handler driven explicitly by tests with a fake clock. Tasks
// may be posted from any goroutine; they only run from DispatchAll and
// Advance.
type Manual struct {
	mu  sync.Mutex
	now time.Time
	q   queue
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Post(fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.insert(m.now, fn)
}

func (m *Manual) PostAtFront(fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.insertFront(fn)
}

func (m *Manual) PostDelayed(fn func(), delay time.Duration) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.insert(m.now.Add(delay), fn)
}

func (m *Manual) Remove(tok Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.q.remove(tok)
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// HasPending reports whether a task is due at the current time.
func (m *Manual) HasPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.q.tasks) > 0 && !m.q.tasks[0].when.After(m.now)
}

// Pending counts all queued tasks, including delayed ones.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.q.tasks)
}

// DispatchAll runs due tasks, including ones they post, until none are due.
func (m *Manual) DispatchAll() int {
	n := 0
	for {
		m.mu.Lock()
		fn, _, _ := m.q.pop(m.now)
		m.mu.Unlock()
		if fn == nil {
			return n
		}
		fn()
		n++
	}
}

// Advance moves the clock forward by d, running tasks as they come due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.DispatchAll()
		m.mu.Lock()
		if len(m.q.tasks) == 0 || m.q.tasks[0].when.After(target) {
			m.mu.Unlock()
			break
		}
		m.now = m.q.tasks[0].when
		m.mu.Unlock()
	}
	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
	m.DispatchAll()
}
