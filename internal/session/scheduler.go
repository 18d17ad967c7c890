package session

import (
	"sync"
	"time"
)

// Scheduler runs fn once after delay. Tasks are not cancellable; the engine
// discards stale ones when they fire.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler fires tasks on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// ManualScheduler queues tasks until the caller fires them. Used by tests and
// by callers that drive time through their own event loop.
type ManualScheduler struct {
	mu     sync.Mutex
	tasks  []func()
	delays []time.Duration
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, fn)
	m.delays = append(m.delays, delay)
}

// Pending returns the number of queued tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// LastDelay returns the delay of the most recently queued task.
func (m *ManualScheduler) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.delays) == 0 {
		return 0
	}
	return m.delays[len(m.delays)-1]
}

// RunNext fires the oldest queued task. It reports false when none is queued.
func (m *ManualScheduler) RunNext() bool {
	m.mu.Lock()
	if len(m.tasks) == 0 {
		m.mu.Unlock()
		return false
	}
	fn := m.tasks[0]
	m.tasks = m.tasks[1:]
	m.delays = m.delays[1:]
	m.mu.Unlock()
	fn()
	return true
}

// RunAll fires queued tasks until none remain.
func (m *ManualScheduler) RunAll() {
	for m.RunNext() {
	}
}
