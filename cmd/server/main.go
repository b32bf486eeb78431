package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"janseva/internal/analytics"
	"janseva/internal/audit"
	"janseva/internal/jwtauth"
	"janseva/internal/notify"
	"janseva/internal/persistence"
	"janseva/internal/platform/config"
	"janseva/internal/platform/httpserver"
	"janseva/internal/platform/logger"
	"janseva/internal/platform/middleware"
	platformredis "janseva/internal/platform/redis"
	"janseva/internal/submission/handler"
	"janseva/internal/submission/metrics"
	"janseva/internal/submission/service"
	"janseva/internal/submission/store"
	"janseva/internal/validation/enrich"
)

const (
	notifyBuffer    = 256
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 30 * time.Second
)

// main wires dependencies and keeps the lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, cleanup, err := newBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("persistence backend: %w", err)
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	subMetrics := metrics.New(reg)

	storeOpts := []store.Option{
		store.WithLogger(log),
		store.WithPersistMetrics(subMetrics),
	}
	if cfg.StrictTransitions {
		storeOpts = append(storeOpts, store.WithStrictTransitions(cfg.AllowRegression))
	}
	st, err := store.New(ctx, backend, storeOpts...)
	if err != nil {
		return fmt.Errorf("load submission store: %w", err)
	}

	var supplier enrich.IssueSupplier
	if cfg.EnrichURL != "" {
		supplier = enrich.NewHTTPSupplier(cfg.EnrichURL, nil)
	}
	validator := enrich.New(supplier,
		enrich.WithTimeout(cfg.EnrichTimeout),
		enrich.WithLogger(log),
	)

	dispatcher := notify.NewChannelDispatcher(notifyBuffer, log)
	sink, err := newNotifySink(cfg, log)
	if err != nil {
		return fmt.Errorf("notification sink: %w", err)
	}
	worker := notify.NewWorker(dispatcher.Inbox(), sink, log)

	auditPub := audit.NewPublisher(audit.NewInMemoryStore())

	svc := service.New(st, validator,
		service.WithLogger(log),
		service.WithDispatcher(dispatcher),
		service.WithAuditPublisher(auditPub),
		service.WithMetrics(subMetrics),
	)

	collector := analytics.New(svc, cfg.AnalyticsInterval, log, reg)

	jwtSvc := jwtauth.NewService(cfg.JWTSigningKey, "janseva")
	router := newRouter(svc, validator, jwtSvc, log, reg)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting janseva server", "addr", cfg.Addr, "backend", cfg.PersistBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return worker.Run(ctx) })
	g.Go(func() error { return collector.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newRouter(svc *service.Service, validator *enrich.Validator, jwtSvc *jwtauth.Service, log *slog.Logger, reg *prometheus.Registry) http.Handler {
	h := handler.New(svc, validator, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		h.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdmin(jwtSvc, log))
		h.RegisterAdmin(r)
	})
	return r
}

// newBackend selects the snapshot backend. The cleanup closes whatever
// connection the choice opened.
func newBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (persistence.Backend, func(), error) {
	noop := func() {}
	switch cfg.PersistBackend {
	case "memory":
		return persistence.NewMemory(), noop, nil
	case "file":
		return persistence.NewFile(cfg.DataFile), noop, nil
	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, errors.New("redis backend selected but JANSEVA_REDIS_URL is empty")
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Warn("closing redis client", "error", err)
			}
		}
		return persistence.NewRedis(client, ""), cleanup, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, noop, errors.New("postgres backend selected but JANSEVA_POSTGRES_DSN is empty")
		}
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		backend, err := persistence.NewPostgres(ctx, db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				log.Warn("closing postgres pool", "error", err)
			}
		}
		return backend, cleanup, nil
	default:
		return nil, noop, fmt.Errorf("unknown persistence backend %q", cfg.PersistBackend)
	}
}

// newNotifySink picks Kafka when brokers are configured, falling back
// to structured log delivery.
func newNotifySink(cfg config.Config, log *slog.Logger) (notify.Sink, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	return notify.NewLogSink(log), nil
}
