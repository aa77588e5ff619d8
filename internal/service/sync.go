package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/catalogsearch/internal/adapter"
	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
)

// Rebuilder forces a full hydration.
type Rebuilder interface {
	Rebuild(ctx context.Context) (domain.RebuildStats, error)
}

// SyncService is the write path: incremental mutations from catalog events
// and the administrative rebuild. Incremental writes may be overwritten by a
// rebuild whose snapshot predates them.
type SyncService struct {
	engine    engine.SearchEngine
	rebuilder Rebuilder
	logger    *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(eng engine.SearchEngine, rebuilder Rebuilder, logger *slog.Logger) *SyncService {
	return &SyncService{
		engine:    eng,
		rebuilder: rebuilder,
		logger:    logger,
	}
}

// UpsertProduct indexes the full current state of a product.
func (s *SyncService) UpsertProduct(ctx context.Context, p *domain.Product) error {
	doc, err := adapter.FromProduct(p)
	if err != nil {
		return invalidRecord(domain.KindProduct, err)
	}
	return s.upsert(ctx, doc)
}

// UpsertCategory indexes the full current state of a category.
func (s *SyncService) UpsertCategory(ctx context.Context, c *domain.Category) error {
	doc, err := adapter.FromCategory(c)
	if err != nil {
		return invalidRecord(domain.KindCategory, err)
	}
	return s.upsert(ctx, doc)
}

// Remove deletes a document of either kind. Unknown IDs are not an error.
func (s *SyncService) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("document id is required")
	}

	if err := s.engine.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove document %s: %w", id, err)
	}
	indexMutationsTotal.WithLabelValues("any", "remove").Inc()

	s.logger.InfoContext(ctx, "document removed from index", slog.String("document_id", id))
	return nil
}

// Rebuild re-hydrates the whole index from the source of truth.
func (s *SyncService) Rebuild(ctx context.Context) (domain.RebuildStats, error) {
	stats, err := s.rebuilder.Rebuild(ctx)
	if err != nil {
		return domain.RebuildStats{}, hydrationError(err)
	}

	s.logger.InfoContext(ctx, "index rebuilt",
		slog.Int("documents", stats.DocumentsIndexed),
		slog.Int("distinct_tokens", stats.DistinctTokens),
		slog.Int64("duration_ms", stats.DurationMs),
	)
	return stats, nil
}

func (s *SyncService) upsert(ctx context.Context, doc domain.IndexedDocument) error {
	if err := s.engine.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert %s %s: %w", doc.Kind, doc.ID, err)
	}
	indexMutationsTotal.WithLabelValues(string(doc.Kind), "upsert").Inc()

	s.logger.InfoContext(ctx, "document indexed",
		slog.String("document_id", doc.ID),
		slog.String("kind", string(doc.Kind)),
	)
	return nil
}

func invalidRecord(kind domain.Kind, err error) error {
	if errors.Is(err, adapter.ErrMissingID) {
		return apperrors.InvalidInput(string(kind) + " id is required")
	}
	return fmt.Errorf("adapt %s: %w", kind, err)
}
