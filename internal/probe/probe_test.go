package probe

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "checking", StatusChecking.String())
	assert.Equal(t, "online", StatusOnline.String())
	assert.Equal(t, "offline", StatusOffline.String())
}

func TestProber_InitialStatusIsChecking(t *testing.T) {
	p := New(func(context.Context) error { return nil }, time.Minute, time.Second)
	assert.Equal(t, StatusChecking, p.Status())
}

func TestProber_ImmediateProbe(t *testing.T) {
	p := New(func(context.Context) error { return nil }, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return p.Status() == StatusOnline
	}, time.Second, 10*time.Millisecond, "first probe runs before the first tick")

	cancel()
	require.NoError(t, <-done)
}

func TestProber_TransitionsWithCheckResult(t *testing.T) {
	var fail atomic.Bool
	p := New(func(context.Context) error {
		if fail.Load() {
			return errors.New("unreachable")
		}
		return nil
	}, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return p.Status() == StatusOnline
	}, time.Second, 5*time.Millisecond)

	fail.Store(true)
	require.Eventually(t, func() bool {
		return p.Status() == StatusOffline
	}, time.Second, 5*time.Millisecond)

	fail.Store(false)
	require.Eventually(t, func() bool {
		return p.Status() == StatusOnline
	}, time.Second, 5*time.Millisecond)
}

func TestProber_RunReturnsNilOnCancel(t *testing.T) {
	p := New(func(context.Context) error { return errors.New("always down") }, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return p.Status() == StatusOffline
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done, "probe failures never surface as Run errors")
}
