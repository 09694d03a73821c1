package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "slot")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "slot", []byte("hello")))
	data, err := m.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, m.Delete(ctx, "slot"))
	_, err = m.Get(ctx, "slot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteMissingSlot(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Delete(context.Background(), "missing"))
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "slot", []byte("abc")))
	data, err := m.Get(ctx, "slot")
	require.NoError(t, err)

	data[0] = 'x'
	again, err := m.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again, "callers must not be able to mutate stored data")
}

func TestMemory_WatchNotifiesOnSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMemory()
	ch, err := m.Watch(ctx, "slot")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "slot", []byte("v1")))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected notification after Set")
	}

	require.NoError(t, m.Delete(ctx, "slot"))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected notification after Delete")
	}
}

func TestMemory_WatchCoalesces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMemory()
	ch, err := m.Watch(ctx, "slot")
	require.NoError(t, err)

	// Several writes before the watcher reads must not block the writer.
	for range 5 {
		require.NoError(t, m.Set(ctx, "slot", []byte("v")))
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected at least one coalesced notification")
	}
}

func TestMemory_WatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewMemory()
	ch, err := m.Watch(ctx, "slot")
	require.NoError(t, err)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel closes after context cancellation")
}

func TestMemory_ConcurrentWritersAndWatchChurn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Writers hammer the slot while watchers register and cancel underneath
	// them. A send racing a watcher teardown must never panic the writer.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					require.NoError(t, m.Set(ctx, "slot", []byte("v")))
					require.NoError(t, m.Delete(ctx, "slot"))
				}
			}
		}()
	}

	for range 200 {
		watchCtx, cancel := context.WithCancel(ctx)
		ch, err := m.Watch(watchCtx, "slot")
		require.NoError(t, err)
		select {
		case <-ch:
		default:
		}
		cancel()
	}

	close(stop)
	wg.Wait()
}

func TestMemory_WatchIsPerSlot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMemory()
	ch, err := m.Watch(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "b", []byte("v")))
	select {
	case <-ch:
		t.Fatal("watcher on slot a must not see writes to slot b")
	case <-time.After(50 * time.Millisecond):
	}
}
