// Package app wires the storefront together: storage, upstream client,
// availability prober, catalog loader, cart, checkout, sessions, and the HTTP
// server with graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/cheburek-storefront/internal/api"
	"github.com/xenking/cheburek-storefront/internal/cart"
	"github.com/xenking/cheburek-storefront/internal/catalog"
	"github.com/xenking/cheburek-storefront/internal/checkout"
	"github.com/xenking/cheburek-storefront/internal/probe"
	"github.com/xenking/cheburek-storefront/internal/session"
	"github.com/xenking/cheburek-storefront/internal/storage"
	"github.com/xenking/cheburek-storefront/internal/upstream"
	"github.com/xenking/cheburek-storefront/pkg/health"
	"github.com/xenking/cheburek-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("upstream", cfg.UpstreamURL),
	)

	// Storage: Redis when configured, in-process memory otherwise.
	var store storage.Store
	if cfg.RedisURL != "" {
		redisStore, err := storage.NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		store = redisStore
	} else {
		lg.Info("No Redis URL configured, using in-memory storage")
		store = storage.NewMemory()
	}
	defer func() { _ = store.Close() }()

	// Upstream client and availability prober.
	client := upstream.NewClient(cfg.UpstreamURL, cfg.Probe.FetchTimeout)
	prober := probe.New(client.Ping, cfg.Probe.Interval, cfg.Probe.Timeout)

	// Domain services.
	loader := catalog.NewLoader(client, prober.Status, cfg.Probe.FetchTimeout)
	cartStore := cart.NewStore(store)
	submitter := checkout.NewSubmitter(cartStore, &checkout.SimulatedProcessor{
		Delay: cfg.Checkout.ProcessingDelay,
	})
	sessions := session.NewManager(store, nil)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("storage", 5*time.Second, store.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Mux: health endpoints + storefront routes on one server.
	h := api.NewHandler(loader, cartStore, submitter, sessions, client, prober)
	mux := h.Routes()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return prober.Run(gCtx)
	})
	g.Go(func() error {
		// Graceful shutdown: wait for cancellation, drain, then stop.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}
