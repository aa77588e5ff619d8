package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	"github.com/utafrali/catalogsearch/internal/hydration"
	"github.com/utafrali/catalogsearch/internal/tokenizer"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
)

const tracerName = "github.com/utafrali/catalogsearch/internal/service"

// Freshness is the part of the hydration manager the read path needs.
type Freshness interface {
	EnsureFresh(ctx context.Context) error
	LastHydratedAt() (time.Time, bool)
}

// SearchService answers queries against the index. It never mutates it.
type SearchService struct {
	engine    engine.SearchEngine
	freshness Freshness
	logger    *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, freshness Freshness, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine:    eng,
		freshness: freshness,
		logger:    logger,
	}
}

// Search returns one page of hits ranked by token overlap. Limit defaults to
// 20 and is clamped to the 100-candidate ceiling; pages start at 1. A blank
// query returns an empty result without touching the index.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (result *domain.SearchResult, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "SearchService.Search")
	defer func() { s.finish(span, "search", start, err) }()

	limit := clamp(query.Limit, domain.DefaultLimit, domain.MaxCandidates)
	page := max(query.Page, 1)
	empty := &domain.SearchResult{Hits: []domain.IndexedDocument{}, Page: page}

	tokens := tokenizer.Tokenize(query.Query, tokenizer.DefaultN)
	if len(tokens) == 0 {
		return empty, nil
	}

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	// Pages past the candidate cap are empty; the check also keeps the offset
	// from overflowing for very large page numbers.
	offset := domain.MaxCandidates
	if page-1 <= domain.MaxCandidates/limit {
		offset = (page - 1) * limit
	}

	res, err := s.engine.Search(ctx, tokens, engine.SearchOptions{
		Kind:   query.Kind,
		Cap:    domain.MaxCandidates,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	span.SetAttributes(
		attribute.Int("search.tokens", len(tokens)),
		attribute.Int("search.total", res.Total),
	)
	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", query.Query),
		slog.Int("total", res.Total),
		slog.Int("page", page),
	)

	return &domain.SearchResult{
		Hits:       res.Hits,
		Total:      res.Total,
		Page:       page,
		TotalPages: (res.Total + limit - 1) / limit,
	}, nil
}

// Suggest returns up to limit distinct document names for a partial query,
// best match first. Limit defaults to 5 and is clamped to 20.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) (suggestions []string, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "SearchService.Suggest")
	defer func() { s.finish(span, "suggest", start, err) }()

	limit = clamp(limit, domain.DefaultSuggest, domain.MaxSuggest)
	suggestions = []string{}

	tokens := tokenizer.Tokenize(prefix, tokenizer.DefaultN)
	if len(tokens) == 0 {
		return suggestions, nil
	}

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	res, err := s.engine.Search(ctx, tokens, engine.SearchOptions{Cap: domain.MaxCandidates})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	seen := make(map[string]struct{}, limit)
	for _, hit := range res.Hits {
		key := tokenizer.Normalize(hit.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, hit.Name)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// Stats reports index size and the last successful hydration time.
func (s *SearchService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	st, err := s.engine.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}

	out := &domain.IndexStats{Documents: st.Documents, DistinctTokens: st.DistinctTokens}
	if at, ok := s.freshness.LastHydratedAt(); ok {
		out.LastHydratedAt = &at
	}
	return out, nil
}

func (s *SearchService) ensureFresh(ctx context.Context) error {
	if err := s.freshness.EnsureFresh(ctx); err != nil {
		return hydrationError(err)
	}
	return nil
}

func (s *SearchService) finish(span trace.Span, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	searchQueriesTotal.WithLabelValues(op, outcome).Inc()
	searchQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// hydrationError maps source failures to 503 so callers can retry later.
func hydrationError(err error) error {
	var fetchErr *hydration.SourceFetchError
	if errors.As(err, &fetchErr) {
		return apperrors.Unavailable("search index is unavailable", err)
	}
	return fmt.Errorf("hydrate index: %w", err)
}

// clamp returns def for non-positive v and ceiling for v above it.
func clamp(v, def, ceiling int) int {
	if v <= 0 {
		return def
	}
	return min(v, ceiling)
}
