package limiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory keeps counters in process. Suitable for a single instance.
type Memory struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	period      time.Duration
	now         func() time.Time
}

func NewMemory(maxAttempts int, period time.Duration) *Memory {
	return &Memory{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		period:      period,
		now:         time.Now,
	}
}

func (m *Memory) Attempt(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	w, ok := m.windows[key]
	if !ok {
		w = &window{resetAt: now.Add(m.period)}
		m.windows[key] = w
	}
	if w.count >= m.maxAttempts {
		return w.resetAt.Sub(now), nil
	}
	w.count++
	return 0, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[key]; ok && w.count > 0 {
		w.count--
	}
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
	return nil
}

// sweep drops lapsed windows. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
