package recommend

import (
	"context"
	"sync"
)

// MemoryWindowStore keeps windows in process memory. Each learner has its own lock.
type MemoryWindowStore struct {
	learners sync.Map // uint -> *learnerWindow
}

type learnerWindow struct {
	mu     sync.Mutex
	window *Window
	scale  float64
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{}
}

func (s *MemoryWindowStore) Advance(ctx context.Context, learnerID uint, fresh []MetricVector, capacity int, scale float64) ([]MetricVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, _ := s.learners.LoadOrStore(learnerID, &learnerWindow{})
	lw := v.(*learnerWindow)

	lw.mu.Lock()
	defer lw.mu.Unlock()

	switch {
	case lw.window == nil:
		lw.window = NewWindow(capacity)
	case lw.scale != scale:
		lw.window = RestoreWindow(capacity, Rescale(lw.window.Entries(), lw.scale, scale))
	case lw.window.Cap() != capacity:
		lw.window = RestoreWindow(capacity, lw.window.Entries())
	}
	lw.scale = scale
	lw.window.Push(fresh...)
	return lw.window.Entries(), nil
}

// Snapshot returns the learner's current window without modifying it.
func (s *MemoryWindowStore) Snapshot(learnerID uint) []MetricVector {
	v, ok := s.learners.Load(learnerID)
	if !ok {
		return nil
	}
	lw := v.(*learnerWindow)
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.window == nil {
		return nil
	}
	return lw.window.Entries()
}
