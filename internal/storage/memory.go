package storage

import (
	"context"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. It backs single-process deployments and
// tests, where no external key-value service is available.
type Memory struct {
	mu       sync.Mutex
	slots    map[string][]byte
	watchers map[string][]chan struct{}
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		slots:    make(map[string][]byte),
		watchers: make(map[string][]chan struct{}),
	}
}

// Get returns a copy of the slot contents.
func (m *Memory) Get(_ context.Context, slot string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.slots[slot]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set replaces the slot contents and notifies watchers.
func (m *Memory) Set(_ context.Context, slot string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = stored
	m.notifyLocked(slot)
	return nil
}

// Delete removes the slot and notifies watchers.
func (m *Memory) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	m.notifyLocked(slot)
	return nil
}

// Watch registers a change listener for slot.
func (m *Memory) Watch(ctx context.Context, slot string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	m.watchers[slot] = append(m.watchers[slot], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Unregister and close under the same lock that guards sends, so no
		// in-flight notification can hit the closed channel.
		m.mu.Lock()
		ws := m.watchers[slot]
		for i, w := range ws {
			if w == ch {
				m.watchers[slot] = append(ws[:i], ws[i+1:]...)
				break
			}
		}
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

// Ping always succeeds for the in-process store.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op for the in-process store.
func (m *Memory) Close() error { return nil }

// notifyLocked delivers a coalesced signal to each watcher of slot. A watcher
// that has not consumed its previous signal is skipped rather than blocked
// on, so holding the lock here never stalls a writer. Must be called with
// m.mu held.
func (m *Memory) notifyLocked(slot string) {
	for _, ch := range m.watchers[slot] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
