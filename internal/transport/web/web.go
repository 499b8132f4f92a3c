package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/logger"
	"github.com/avstrong/spotscape/internal/spot"
)

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	l        *logger.Logger
	conf     Conf
	bManager *booking.Manager
	spots    *spot.Catalog
	limiter  *rate.Limiter
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	MetricsEndpoint   string
	// MetricsHandler is mounted on MetricsEndpoint when set.
	MetricsHandler http.Handler
	// RateLimit bounds booking writes across all clients.
	RateLimit rate.Limit
	RateBurst int
	// TracerProvider starts a server span per request. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

func New(ctx context.Context, conf Conf, bookingManager *booking.Manager, spots *spot.Catalog) (*Server, error) {
	mux := http.NewServeMux()

	otelOpts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}

	if conf.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(conf.TracerProvider))
	}

	//nolint:exhaustruct
	srv := &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           otelhttp.NewHandler(mux, "spotscape", otelOpts...),
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	if conf.L == nil {
		conf.L = logger.Nop()
	}

	if conf.LivenessEndpoint == "" {
		conf.LivenessEndpoint = "/liveness"
	}

	limit, burst := conf.RateLimit, conf.RateBurst
	if limit <= 0 {
		limit = rate.Inf
	}

	if burst <= 0 {
		burst = 1
	}

	server := &Server{
		srv:      srv,
		router:   mux,
		l:        conf.L,
		conf:     conf,
		bManager: bookingManager,
		spots:    spots,
		limiter:  rate.NewLimiter(limit, burst),
	}

	server.addRoutes(mux)

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler exposes the traced, routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
