package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orbit-storefront/internal/content"
	"github.com/xenking/orbit-storefront/internal/domain/auth"
	"github.com/xenking/orbit-storefront/internal/domain/cart"
	"github.com/xenking/orbit-storefront/internal/domain/catalog"
	"github.com/xenking/orbit-storefront/internal/domain/reachability"
	"github.com/xenking/orbit-storefront/internal/handler"
	"github.com/xenking/orbit-storefront/internal/storage/postgres"
	"github.com/xenking/orbit-storefront/pkg/health"
	"github.com/xenking/orbit-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the background
// workers, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Content origin client, traced like inbound requests.
	contentClient, err := content.New(content.Config{
		BaseURL: cfg.Content.BaseURL,
		HTTPClient: &http.Client{
			Timeout: cfg.Content.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
		},
		MaxBodyBytes: cfg.Content.MaxBodyBytes,
	})
	if err != nil {
		return errors.Wrap(err, "create content client")
	}

	// Catalog store.
	storeOpts := []catalog.Option{
		catalog.WithLogger(lg.Named("catalog")),
		catalog.WithTracerProvider(m.TracerProvider()),
		catalog.WithMeterProvider(m.MeterProvider()),
	}
	if cfg.Catalog.Supersede {
		storeOpts = append(storeOpts, catalog.WithSupersede())
	}
	store, err := catalog.NewStore(contentClient, storeOpts...)
	if err != nil {
		return errors.Wrap(err, "create catalog store")
	}
	defer func() { _ = store.Close() }()

	// Repositories and domain services.
	cartRepo := postgres.NewCartRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)
	cartService := cart.NewService(cartRepo, store)

	// Health check service.
	healthSvc := health.New(lg.Named("health"))
	healthSvc.Register(health.Readiness, "postgres", health.PingCheck(pool), health.WithTimeout(5*time.Second))
	healthSvc.Register(health.Readiness, "catalog", health.ConditionCheck("catalog is closed", func() bool {
		return store.Snapshot().Hydrated
	}))
	healthSvc.Register(health.Liveness, "goroutines", health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP handlers.
	h := handler.NewHandler(
		handler.HandlerConfig{ImageBaseURL: cfg.ImageBaseURL},
		store,
		contentClient,
		cartService,
	)
	securityHandler := handler.NewSecurityHandler(apikeyRepo, []byte(cfg.APIKeyPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, securityHandler.Require(auth.ScopeRefreshCatalog))
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Rate:  cfg.RateLimit.Rate,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.Instrument("catalog-api", routeFinder, m),
			httpmiddleware.Labeler(routeFinder),
			httpmiddleware.LogRequests(routeFinder),
		),
	}

	// Reachability monitor against the content origin.
	originAddr, err := reachability.AddrFromURL(contentClient.BaseURL())
	if err != nil {
		return errors.Wrap(err, "content origin address")
	}
	reachLg := lg.Named("reachability")
	prober := reachability.NewDialProber(originAddr,
		reachability.WithInterval(cfg.Reachability.Interval),
		reachability.WithDialTimeout(cfg.Reachability.DialTimeout),
		reachability.WithProberLogger(reachLg),
	)
	monitor := reachability.NewMonitor(prober, reachability.NewLogNotifier(reachLg), reachLg)

	// Scheduled refreshes.
	stopSchedule, err := scheduleRefresh(ctx, lg.Named("cron"), cfg.Catalog.RefreshSchedule, store)
	if err != nil {
		return err
	}
	defer stopSchedule()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A failed initial load is logged by the store; the schedule retries.
		_ = store.Refresh(gCtx)
		return nil
	})
	g.Go(func() error { return prober.Run(gCtx) })
	g.Go(func() error { return monitor.Run(gCtx) })

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
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
