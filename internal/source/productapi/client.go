// Package productapi reads catalog snapshots from the product service REST API.
package productapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/source"
	"github.com/utafrali/catalogsearch/pkg/httpclient"
)

const (
	serviceName = "product-service"
	pageSize    = 100
	// maxPages stops a misbehaving upstream that never reports the last page.
	maxPages = 10_000
)

// Client implements source.Source over the product service API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

var _ source.Source = (*Client)(nil)

// New creates a product API source. All calls share one circuit breaker.
func New(baseURL string, cfg httpclient.Config, logger *slog.Logger) *Client {
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		logger,
	)
	return &Client{baseURL: baseURL, http: cb, logger: logger}
}

type productPage struct {
	Data       []domain.Product `json:"data"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
}

// apiCategory is the category shape served by the product service.
type apiCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type categoryList struct {
	Data []apiCategory `json:"data"`
}

// ListVisibleProducts walks every page of published products.
func (c *Client) ListVisibleProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("status", domain.ProductStatusPublished)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(pageSize))

		var body productPage
		if err := c.getJSON(ctx, "/api/v1/products?"+q.Encode(), &body); err != nil {
			return nil, fmt.Errorf("list products page %d: %w", page, err)
		}

		for _, p := range body.Data {
			if p.Status != "" && p.Status != domain.ProductStatusPublished {
				continue
			}
			out = append(out, p)
		}

		if !body.HasNext || len(body.Data) == 0 {
			return out, nil
		}
	}

	c.logger.WarnContext(ctx, "product listing truncated", slog.Int("max_pages", maxPages))
	return out, nil
}

// ListVisibleCategories returns the active categories.
func (c *Client) ListVisibleCategories(ctx context.Context) ([]domain.Category, error) {
	var body categoryList
	if err := c.getJSON(ctx, "/api/v1/categories", &body); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]domain.Category, 0, len(body.Data))
	for _, ac := range body.Data {
		if !ac.IsActive {
			continue
		}
		out = append(out, domain.Category{
			ID:          ac.ID,
			Name:        ac.Name,
			Slug:        ac.Slug,
			Description: ac.Description,
			ImageURL:    ac.ImageURL,
			Status:      domain.CategoryStatusActive,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.http.Get(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}
