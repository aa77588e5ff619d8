package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/pkg/httputil"
	"github.com/utafrali/catalogsearch/pkg/validator"
)

// Searcher is the read side used by the public routes.
type Searcher interface {
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Stats(ctx context.Context) (*domain.IndexStats, error)
}

// Syncer is the write side used by the admin routes.
type Syncer interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertCategory(ctx context.Context, c *domain.Category) error
	Remove(ctx context.Context, id string) error
	Rebuild(ctx context.Context) (domain.RebuildStats, error)
}

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	search Searcher
	sync   Syncer
	logger *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(search Searcher, sync Syncer, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		sync:   sync,
		logger: logger,
	}
}

// Search handles GET /api/v1/search?q=&limit=&page=&kind=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &domain.SearchQuery{
		Query: strings.TrimSpace(q.Get("q")),
		Limit: positiveInt(q.Get("limit")),
		Page:  positiveInt(q.Get("page")),
	}

	if v := q.Get("kind"); v != "" {
		kind, err := domain.ParseKind(v)
		if err != nil {
			httputil.WriteBadRequest(w, "INVALID_PARAMETER", "kind must be one of: product, category")
			return
		}
		query.Kind = &kind
	}

	result, err := h.search.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles GET /api/v1/search/suggest?q=&limit=
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := positiveInt(r.URL.Query().Get("limit"))

	suggestions, err := h.search.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": suggestions}})
}

// Stats handles GET /api/v1/search/stats
func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.search.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// Reindex handles POST /api/v1/search/reindex. The rebuild runs to
// completion before the response is written.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sync.Rebuild(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// UpsertProduct handles PUT /api/v1/search/products
func (h *SearchHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := req.toDomain()
	if err := h.sync.UpsertProduct(r.Context(), &p); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": p.ID, "status": "indexed"}})
}

// UpsertCategory handles PUT /api/v1/search/categories
func (h *SearchHandler) UpsertCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c := req.toDomain()
	if err := h.sync.UpsertCategory(r.Context(), &c); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": c.ID, "status": "indexed"}})
}

// DeleteDocument handles DELETE /api/v1/search/documents/{id}
func (h *SearchHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sync.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// positiveInt parses v, returning 0 for anything that is not a positive
// integer so the service applies its default.
func positiveInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
