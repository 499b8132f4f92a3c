package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/time/rate"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/config"
	"github.com/avstrong/spotscape/internal/events"
	"github.com/avstrong/spotscape/internal/idgen/simple"
	"github.com/avstrong/spotscape/internal/logger"
	"github.com/avstrong/spotscape/internal/metrics"
	"github.com/avstrong/spotscape/internal/migration"
	"github.com/avstrong/spotscape/internal/obs"
	"github.com/avstrong/spotscape/internal/payment/mock"
	"github.com/avstrong/spotscape/internal/spot"
	"github.com/avstrong/spotscape/internal/state"
	"github.com/avstrong/spotscape/internal/storage"
	"github.com/avstrong/spotscape/internal/storage/file"
	"github.com/avstrong/spotscape/internal/storage/memory"
	"github.com/avstrong/spotscape/internal/storage/redis"
	"github.com/avstrong/spotscape/internal/storage/sqlite"
	"github.com/avstrong/spotscape/internal/transport/web"
)

// App holds the wired components. Build it with Build and start it with Serve.
type App struct {
	l       *logger.Logger
	cfg     *config.Config
	kv      storage.KV
	closers []io.Closer
	tp      *sdktrace.TracerProvider
	store   *state.Store
	manager *booking.Manager
	server  *web.Server
}

func Run(l *logger.Logger, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	a, err := Build(ctx, l, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

// Build opens the storage backend, hydrates the booking state and wires the
// HTTP server. The caller owns Close.
func Build(ctx context.Context, l *logger.Logger, cfg *config.Config) (*App, error) {
	a := &App{l: l, cfg: cfg}

	tp, err := obs.InitTracer(ctx, obs.Conf{
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a.tp = tp

	if err := a.openKV(ctx); err != nil {
		a.Close()

		return nil, err
	}

	bus := events.NewBus()
	accessor := storage.New(storage.Config{L: l, KV: a.kv, Key: cfg.Storage.Key})
	a.store = state.New(state.Config{L: l, Storage: accessor, Bus: bus})

	if err := a.store.Hydrate(ctx); err != nil {
		a.Close()

		return nil, fmt.Errorf("hydrate bookings: %w", err)
	}

	l.LogInfo("Loaded %d bookings from %s storage under %q", len(a.store.Bookings()), cfg.Storage.Driver, accessor.Key())

	idGen := simple.New()
	idGen.Seed(a.store.MaxID())

	catalog := spot.NewCatalog()
	if err := migration.Up(ctx, l, catalog); err != nil {
		a.Close()

		return nil, fmt.Errorf("up spot migration: %w", err)
	}

	m := metrics.New()

	var metricsHandler http.Handler

	if cfg.Monitoring.PrometheusEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m.Register(reg)

		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	a.store.Subscribe(m.Track(a.store))

	gateway := mock.New(mock.Config{
		Delay:       cfg.PaymentDelay(),
		SuccessRate: cfg.Payment.SuccessRate,
		Currency:    cfg.Payment.Currency,
	})

	a.manager = booking.New(booking.Conf{
		L:           l,
		State:       a.store,
		IDGenerator: idGen,
		Spots:       catalog,
		Gateway:     gateway,
		Recorder:    m,

		TracerProvider: tp,
	})

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      l.StdLogger(),
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		LivenessEndpoint:  cfg.HTTP.LivenessEndpoint,
		MetricsEndpoint:   cfg.Monitoring.MetricsEndpoint,
		MetricsHandler:    metricsHandler,
		RateLimit:         rate.Limit(cfg.HTTP.RateLimitPerSecond),
		RateBurst:         cfg.HTTP.RateLimitBurst,
		TracerProvider:    tp,
	}

	srv, err := web.New(ctx, webConf, a.manager, catalog)
	if err != nil {
		a.Close()

		return nil, fmt.Errorf("init http server: %w", err)
	}

	a.server = srv

	return a, nil
}

func (a *App) openKV(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		a.kv = memory.New()
	case config.DriverFile:
		kv, err := file.New(a.cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("open file storage: %w", err)
		}

		a.kv = kv
	case config.DriverSQLite:
		kv, err := sqlite.Open(a.cfg.Storage.SQLite.Path)
		if err != nil {
			return fmt.Errorf("open sqlite storage: %w", err)
		}

		a.kv = kv
		a.closers = append(a.closers, kv)
	case config.DriverRedis:
		kv := redis.New(redis.Config{
			Address:  a.cfg.Storage.Redis.Address,
			Password: a.cfg.Storage.Redis.Password,
			DB:       a.cfg.Storage.Redis.DB,
			Prefix:   a.cfg.Storage.Redis.Prefix,
		})

		if err := kv.PingContext(ctx); err != nil {
			_ = kv.Close()

			return fmt.Errorf("connect to redis: %w", err)
		}

		a.kv = kv
		a.closers = append(a.closers, kv)
	default:
		return fmt.Errorf("storage.driver %q: %w", a.cfg.Storage.Driver, config.ErrUnknownDriver)
	}

	return nil
}

func (a *App) Manager() *booking.Manager {
	return a.manager
}

func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Serve blocks until ctx is done, then shuts the HTTP server down.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := a.server.Srv()

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			a.l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	a.l.LogInfo("Application is running on %v...", srv.Addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		cancel()

		return fmt.Errorf("run http server: %w", err)
	}

	a.l.LogInfo("Application stopped gracefully")

	return nil
}

// Close releases the storage backend and flushes pending spans.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.LogErrorf("Failed to close storage: %v", err.Error())
		}
	}

	a.closers = nil

	if a.tp == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := a.tp.Shutdown(ctx); err != nil {
		a.l.LogErrorf("Failed to stop tracer provider: %v", err.Error())
	}

	a.tp = nil
}
