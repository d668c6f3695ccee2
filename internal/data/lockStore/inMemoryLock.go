package lockStore

import (
	"context"
	"sync"
)

// InMemoryLocker is the single-process fallback used when Redis is offline.
type InMemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func InitInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *InMemoryLocker) slot(docName string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[docName]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[docName] = ch
	}
	return ch
}

func (l *InMemoryLocker) Acquire(ctx context.Context, docName string) (func(), error) {
	ch := l.slot(docName)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
