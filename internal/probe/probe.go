// Package probe tracks upstream API reachability. The catalog loader reads
// the probed status to skip the long live-fetch timeout when the upstream is
// already known to be down. The status is advisory: a stale reading costs
// latency, never correctness.
package probe

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Status is the probed reachability of the upstream API.
type Status int32

const (
	// StatusChecking means no probe has completed yet.
	StatusChecking Status = iota
	// StatusOnline means the last probe succeeded.
	StatusOnline
	// StatusOffline means the last probe failed.
	StatusOffline
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "checking"
	}
}

// CheckFunc performs one reachability check. Any error means offline.
type CheckFunc func(ctx context.Context) error

// Prober periodically checks upstream reachability and exposes the result.
type Prober struct {
	check    CheckFunc
	interval time.Duration
	timeout  time.Duration
	status   atomic.Int32
}

// New creates a Prober that runs check every interval, bounding each probe
// by timeout. The initial status is StatusChecking.
func New(check CheckFunc, interval, timeout time.Duration) *Prober {
	return &Prober{
		check:    check,
		interval: interval,
		timeout:  timeout,
	}
}

// Status returns the most recently probed status.
func (p *Prober) Status() Status {
	return Status(p.status.Load())
}

// Run probes once immediately and then on every interval tick until ctx is
// cancelled. It always returns nil: probe failures update the status, they
// are never surfaced as errors.
func (p *Prober) Run(ctx context.Context) error {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.check(probeCtx); err != nil {
		if prev := p.Status(); prev != StatusOffline {
			zctx.From(ctx).Warn("Upstream API went offline", zap.Error(err))
		}
		p.status.Store(int32(StatusOffline))
		return
	}
	p.status.Store(int32(StatusOnline))
}
