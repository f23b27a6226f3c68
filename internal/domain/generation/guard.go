package generation

import (
	"context"
	"sync"
)

// Guard provides per-conversation single-flight. TryAcquire must check and
// take the slot atomically.
type Guard interface {
	TryAcquire(ctx context.Context, conversationID string) (Lease, bool, error)
	IsHeld(ctx context.Context, conversationID string) (bool, error)
}

// Lease is a held guard slot.
type Lease interface {
	Release(ctx context.Context) error
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewMemoryGuard creates an empty guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{active: make(map[string]struct{})}
}

// TryAcquire implements Guard.
func (g *MemoryGuard) TryAcquire(_ context.Context, conversationID string) (Lease, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[conversationID]; busy {
		return nil, false, nil
	}
	g.active[conversationID] = struct{}{}
	return &memoryLease{guard: g, key: conversationID}, true, nil
}

// IsHeld implements Guard.
func (g *MemoryGuard) IsHeld(_ context.Context, conversationID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[conversationID]
	return busy, nil
}

type memoryLease struct {
	guard *MemoryGuard
	key   string
	once  sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		l.guard.mu.Lock()
		delete(l.guard.active, l.key)
		l.guard.mu.Unlock()
	})
	return nil
}
