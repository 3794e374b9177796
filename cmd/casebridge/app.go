package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"casebridge/internal/mapping"
	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/ports"
	"casebridge/internal/platform/config"
	"casebridge/internal/platform/logger"
	platformredis "casebridge/internal/platform/redis"
	"casebridge/internal/refdata/cache"
	"casebridge/internal/refdata/httpapi"
	"casebridge/internal/refdata/store/memory"
	"casebridge/internal/refdata/store/postgres"
	audit "casebridge/pkg/platform/audit"
	"casebridge/pkg/platform/audit/publisher"
	"casebridge/pkg/platform/audit/publishers/kafka"
	auditmemory "casebridge/pkg/platform/audit/store/memory"
	auditpostgres "casebridge/pkg/platform/audit/store/postgres"
)

// app holds the wired dependencies of one command run.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	refdata  ports.ReferenceDataPort
	audit    *publisher.Publisher
	service  *mapping.Service

	closers []func()
}

// newApp wires config into running dependencies. Logs go to logOut.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger.NewWithWriter(logOut, cfg.Log.Level, cfg.Log.Format),
		registry: prometheus.NewRegistry(),
	}

	refdata, err := a.referenceData(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.refdata = refdata

	sink, err := a.auditSink(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.audit = publisher.NewPublisher(sink, publisher.WithAsyncBuffer(64), publisher.WithLogger(a.logger))
	a.closers = append(a.closers, a.audit.Close)

	a.service, err = mapping.New(a.refdata,
		mapping.WithLogger(a.logger),
		mapping.WithMetrics(metrics.New(a.registry)),
		mapping.WithAuditPublisher(a.audit),
		mapping.WithMaxConcurrency(cfg.MaxConcurrency),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) referenceData(ctx context.Context) (ports.ReferenceDataPort, error) {
	cfg := a.cfg.RefData
	switch cfg.Backend {
	case config.BackendMemory:
		seed, err := loadSeed(cfg.SeedPath)
		if err != nil {
			return nil, err
		}
		a.logger.InfoContext(ctx, "reference data loaded", "backend", cfg.Backend, "path", cfg.SeedPath)
		return memory.New(seed), nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open reference data database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		store := postgres.New(pool)
		if err := store.Health(ctx); err != nil {
			return nil, fmt.Errorf("reference data database unreachable: %w", err)
		}
		return a.cached(ctx, store)

	case config.BackendHTTP:
		client, err := httpapi.New(cfg.URL, httpapi.WithTimeout(cfg.Timeout), httpapi.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		return a.cached(ctx, client)
	}
	return nil, fmt.Errorf("unknown reference data backend %q", cfg.Backend)
}

// cached puts the read-through cache in front of a remote backend: Redis when
// configured, an in-process map otherwise.
func (a *app) cached(ctx context.Context, next ports.ReferenceDataPort) (ports.ReferenceDataPort, error) {
	if a.cfg.RefData.CacheTTL <= 0 {
		return next, nil
	}
	rc, err := platformredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	var backend cache.Backend = cache.NewMemoryBackend()
	if rc != nil {
		a.closers = append(a.closers, func() { _ = rc.Close() })
		backend = cache.NewRedisBackend(rc.Client)
	}
	return cache.New(next, backend, a.cfg.RefData.CacheTTL, cache.WithLogger(a.logger)), nil
}

// auditSink picks Kafka, then the Postgres outbox, then memory.
func (a *app) auditSink(ctx context.Context) (audit.Store, error) {
	cfg := a.cfg.Audit
	switch {
	case len(cfg.KafkaBrokers) > 0:
		pub, err := kafka.New(cfg.KafkaBrokers, cfg.Topic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		if err := pub.EnsureTopic(ctx, 1, 1); err != nil {
			a.logger.WarnContext(ctx, "audit topic not ensured", "topic", cfg.Topic, "error", err)
		}
		return pub, nil

	case cfg.DatabaseURL != "":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open audit database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		store := auditpostgres.New(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return auditmemory.NewInMemoryStore(), nil
}

func loadSeed(path string) (*memory.Seed, error) {
	seed, err := memory.LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed %s: %w", path, err)
	}
	return seed, nil
}

// loadConfig reads and validates the environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
