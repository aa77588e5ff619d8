package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalogsearch/internal/auth"
	"github.com/utafrali/catalogsearch/internal/config"
	"github.com/utafrali/catalogsearch/internal/engine/memory"
	"github.com/utafrali/catalogsearch/internal/event"
	handler "github.com/utafrali/catalogsearch/internal/handler/http"
	"github.com/utafrali/catalogsearch/internal/hydration"
	"github.com/utafrali/catalogsearch/internal/service"
	"github.com/utafrali/catalogsearch/internal/source"
	pgsource "github.com/utafrali/catalogsearch/internal/source/postgres"
	"github.com/utafrali/catalogsearch/internal/source/productapi"
	"github.com/utafrali/catalogsearch/pkg/database"
	"github.com/utafrali/catalogsearch/pkg/health"
	"github.com/utafrali/catalogsearch/pkg/httpclient"
	pkgkafka "github.com/utafrali/catalogsearch/pkg/kafka"
)

// slowQueryThreshold is when a snapshot query is logged as slow.
const slowQueryThreshold = 2 * time.Second

// App wires together all dependencies and runs the search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	manager    *hydration.Manager
	consumers  []*pkgkafka.Consumer
	pool       *pgxpool.Pool
	redis      *redis.Client
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	healthHandler := health.NewHandler()

	src, err := a.openSource(ctx, healthHandler)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	eng := memory.New()
	a.manager = hydration.NewManager(src, eng, cfg.StalenessTTL, logger)
	logger.Info("in-memory search engine initialized",
		slog.String("source", cfg.Source),
		slog.Duration("staleness_ttl", cfg.StalenessTTL),
	)

	searchService := service.NewSearchService(eng, a.manager, logger)
	syncService := service.NewSyncService(eng, a.manager, logger)

	if cfg.KafkaEnabled {
		if err := a.initConsumers(ctx, syncService, healthHandler); err != nil {
			a.closeStores()
			return nil, err
		}
	}

	if cfg.HydrateOnStart {
		healthHandler.Register("index", func(context.Context) error {
			if !a.manager.Hydrated() {
				return errors.New("index not hydrated yet")
			}
			return nil
		})
	}

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is empty, admin routes will reject every request")
	}
	verifier := auth.NewVerifier(cfg.AdminJWTSecret)

	router := handler.NewRouter(searchService, syncService, verifier.Validate, healthHandler, handler.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		CacheMaxAge:    cfg.CacheMaxAge,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      75 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openSource builds the hydration source selected by SEARCH_SOURCE.
func (a *App) openSource(ctx context.Context, healthHandler *health.Handler) (source.Source, error) {
	switch a.cfg.Source {
	case config.SourcePostgres:
		pool, err := database.OpenPostgres(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init postgres source: %w", err)
		}
		a.pool = pool

		collector := database.NewPoolCollector(pool, "search")
		if err := prometheus.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, fmt.Errorf("register pool collector: %w", err)
			}
		}
		healthHandler.Register("postgres", pool.Ping)

		a.logger.Info("postgres source initialized",
			slog.String("host", a.cfg.Postgres.Host),
			slog.String("database", a.cfg.Postgres.DBName),
		)
		return pgsource.New(pool, database.QueryTracer{SlowThreshold: slowQueryThreshold, Logger: a.logger}), nil

	default:
		a.logger.Info("product API source initialized", slog.String("url", a.cfg.ProductServiceURL))
		return productapi.New(a.cfg.ProductServiceURL, httpclient.DefaultConfig(), a.logger), nil
	}
}

// initConsumers subscribes one consumer per catalog topic. Redelivered
// events are dropped by the idempotency store.
func (a *App) initConsumers(ctx context.Context, sync event.Syncer, healthHandler *health.Handler) error {
	var store pkgkafka.IdempotencyStore
	switch a.cfg.IdempotencyBackend {
	case config.IdempotencyRedis:
		client, err := database.OpenRedis(ctx, a.cfg.Redis)
		if err != nil {
			return fmt.Errorf("init idempotency store: %w", err)
		}
		a.redis = client
		healthHandler.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		store = pkgkafka.NewRedisIdempotencyStore(client, a.cfg.IdempotencyTTL)
	default:
		store = pkgkafka.NewMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}

	eventConsumer := event.NewConsumer(sync, a.logger)
	handle := pkgkafka.IdempotentHandler(store, eventConsumer.Handle, a.logger)

	topics := event.Topics()
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  a.cfg.KafkaBrokers,
			GroupID:  a.cfg.KafkaGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		a.consumers = append(a.consumers, pkgkafka.NewConsumer(consumerCfg, handle, a.logger))
	}

	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, a.cfg.KafkaBrokers)
	})

	a.logger.Info("kafka consumers initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
		slog.String("idempotency", a.cfg.IdempotencyBackend),
	)
	return nil
}

// Run starts the HTTP server, the index refresher and the Kafka consumers,
// blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	if a.cfg.HydrateOnStart {
		go func() {
			if _, err := a.manager.Rebuild(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("initial index hydration failed, will retry on demand",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	go a.manager.Run(ctx, a.cfg.RefreshInterval)

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.closeStores(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeStores() error {
	var err error
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil {
			a.logger.Error("redis close error", slog.String("error", cerr.Error()))
			err = cerr
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return err
}
