// Package source defines the source-of-truth collaborator that hydration
// reads full catalog snapshots from.
package source

import (
	"context"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// Source lists the catalog records currently visible to shoppers.
// Implementations own their own timeouts and retries.
type Source interface {
	// ListVisibleProducts returns every published product.
	ListVisibleProducts(ctx context.Context) ([]domain.Product, error)
	// ListVisibleCategories returns every active category.
	ListVisibleCategories(ctx context.Context) ([]domain.Category, error)
}
