package catalog

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cheburek-storefront/internal/probe"
)

// DefaultFetchTimeout bounds a live catalog fetch before falling back to the
// embedded sample menu.
const DefaultFetchTimeout = 10 * time.Second

// Loader produces the storefront menu. It never fails: any fetch problem is
// answered with the embedded fallback set.
type Loader struct {
	fetcher Fetcher
	status  func() probe.Status
	timeout time.Duration
}

// NewLoader creates a Loader. status reports the probed upstream
// reachability; when it returns probe.StatusOffline the live fetch is skipped
// entirely. A nil status func disables the optimization and every Load
// attempts a live fetch.
func NewLoader(fetcher Fetcher, status func() probe.Status, timeout time.Duration) *Loader {
	if status == nil {
		status = func() probe.Status { return probe.StatusChecking }
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Loader{
		fetcher: fetcher,
		status:  status,
		timeout: timeout,
	}
}

// Load returns the normalized product list. On any transport error, timeout,
// or non-2xx upstream response the embedded fallback set is returned instead;
// the second return value reports whether the data came from a live fetch.
func (l *Loader) Load(ctx context.Context) ([]Product, bool) {
	lg := zctx.From(ctx)

	if l.status() == probe.StatusOffline {
		lg.Debug("Upstream known offline, serving fallback menu")
		return Fallback(), false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	records, err := l.fetcher.FetchProducts(fetchCtx)
	if err != nil {
		lg.Warn("Catalog fetch failed, serving fallback menu", zap.Error(err))
		return Fallback(), false
	}

	products := make([]Product, len(records))
	for i, rec := range records {
		products[i] = Normalize(rec, i)
	}
	lg.Info("Catalog loaded from upstream", zap.Int("products", len(products)))
	return products, true
}

// Categories returns the distinct display categories of products, in first
// appearance order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
