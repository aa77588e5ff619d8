// Package hydration keeps the search index in step with the catalog source of
// truth through full rebuilds.
package hydration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/catalogsearch/internal/adapter"
	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	"github.com/utafrali/catalogsearch/internal/source"
)

const (
	tracerName = "github.com/utafrali/catalogsearch/internal/hydration"
	flightKey  = "hydrate"

	// DefaultStalenessTTL is the index age past which a query forces a rebuild.
	DefaultStalenessTTL = 15 * time.Minute
)

// Manager rebuilds the index from the source. At most one rebuild runs at a
// time; concurrent callers share its result.
type Manager struct {
	source source.Source
	engine engine.SearchEngine
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	flight singleflight.Group

	mu             sync.RWMutex
	lastHydratedAt time.Time
}

// NewManager creates a manager. A non-positive ttl means DefaultStalenessTTL.
func NewManager(src source.Source, eng engine.SearchEngine, ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultStalenessTTL
	}
	return &Manager{
		source: src,
		engine: eng,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// LastHydratedAt returns when the last successful hydration finished.
func (m *Manager) LastHydratedAt() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHydratedAt, !m.lastHydratedAt.IsZero()
}

// Hydrated reports whether at least one hydration has succeeded.
func (m *Manager) Hydrated() bool {
	_, ok := m.LastHydratedAt()
	return ok
}

// EnsureFresh hydrates when the index was never hydrated or is older than
// the staleness TTL.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	last, ok := m.LastHydratedAt()
	if ok && m.now().Sub(last) <= m.ttl {
		return nil
	}
	_, err := m.join(ctx)
	return err
}

// Rebuild forces a hydration regardless of age. A call made while another
// hydration is in flight waits for that one.
func (m *Manager) Rebuild(ctx context.Context) (domain.RebuildStats, error) {
	return m.join(ctx)
}

// Run rebuilds every interval until ctx is done. Failures are logged and the
// previous index keeps serving.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Rebuild(ctx); err != nil && ctx.Err() == nil {
				m.logger.ErrorContext(ctx, "scheduled index refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}

// join starts or joins the shared hydration. The hydration itself is detached
// from ctx; ctx only bounds how long this caller waits.
func (m *Manager) join(ctx context.Context) (domain.RebuildStats, error) {
	ch := m.flight.DoChan(flightKey, func() (any, error) {
		return m.hydrate(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return domain.RebuildStats{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.RebuildStats{}, res.Err
		}
		return res.Val.(domain.RebuildStats), nil
	}
}

func (m *Manager) hydrate(ctx context.Context) (stats domain.RebuildStats, err error) {
	start := m.now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "hydration.Hydrate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			hydrationsTotal.WithLabelValues("error").Inc()
		} else {
			hydrationsTotal.WithLabelValues("success").Inc()
		}
		span.End()
	}()

	m.logger.InfoContext(ctx, "index hydration started")

	products, categories, err := m.fetch(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "index hydration failed, keeping previous index",
			slog.String("error", err.Error()),
		)
		return domain.RebuildStats{}, err
	}

	docs := make([]domain.IndexedDocument, 0, len(products)+len(categories))
	for i := range products {
		doc, err := adapter.FromProduct(&products[i])
		if err != nil {
			stats.Skipped++
			m.skip(ctx, domain.KindProduct, i, err)
			continue
		}
		docs = append(docs, doc)
	}
	for i := range categories {
		doc, err := adapter.FromCategory(&categories[i])
		if err != nil {
			stats.Skipped++
			m.skip(ctx, domain.KindCategory, i, err)
			continue
		}
		docs = append(docs, doc)
	}

	ixStats, err := m.engine.Replace(ctx, docs)
	if err != nil {
		return domain.RebuildStats{}, fmt.Errorf("replace index: %w", err)
	}

	finished := m.now()
	m.mu.Lock()
	m.lastHydratedAt = finished
	m.mu.Unlock()

	elapsed := finished.Sub(start)
	stats.DocumentsIndexed = ixStats.Documents
	stats.DistinctTokens = ixStats.DistinctTokens
	stats.DurationMs = elapsed.Milliseconds()

	hydrationDuration.Observe(elapsed.Seconds())
	indexDocuments.Set(float64(ixStats.Documents))
	indexTokens.Set(float64(ixStats.DistinctTokens))
	span.SetAttributes(
		attribute.Int("search.documents", stats.DocumentsIndexed),
		attribute.Int("search.tokens", stats.DistinctTokens),
		attribute.Int("search.skipped", stats.Skipped),
	)

	m.logger.InfoContext(ctx, "index hydration finished",
		slog.Int("documents", stats.DocumentsIndexed),
		slog.Int("distinct_tokens", stats.DistinctTokens),
		slog.Int("skipped", stats.Skipped),
		slog.Int64("duration_ms", stats.DurationMs),
	)

	return stats, nil
}

// fetch pulls both snapshots concurrently. The first failure cancels the other.
func (m *Manager) fetch(ctx context.Context) ([]domain.Product, []domain.Category, error) {
	var (
		products   []domain.Product
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = m.source.ListVisibleProducts(gctx); err != nil {
			return &SourceFetchError{Kind: domain.KindProduct, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = m.source.ListVisibleCategories(gctx); err != nil {
			return &SourceFetchError{Kind: domain.KindCategory, Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return products, categories, nil
}

func (m *Manager) skip(ctx context.Context, kind domain.Kind, position int, err error) {
	skippedRecords.WithLabelValues(string(kind)).Inc()
	m.logger.WarnContext(ctx, "skipping malformed source record",
		slog.String("kind", string(kind)),
		slog.Int("position", position),
		slog.String("error", err.Error()),
	)
}
