// Package postgres reads catalog snapshots straight from the product
// service's database.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/source"
	"github.com/utafrali/catalogsearch/pkg/database"
)

const listProductsSQL = `
	SELECT p.id, p.name, p.slug, p.description, p.short_description,
	       c.id, c.name, p.tags, p.attributes, p.images, p.stock, p.status, p.variants
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	WHERE p.status = 'published'
	ORDER BY p.created_at, p.id`

const listCategoriesSQL = `
	SELECT id, name, slug, description, image_url
	FROM categories
	WHERE is_active = true
	ORDER BY sort_order, name`

// attributes is the JSONB facet document stored on each product.
type attributes struct {
	Fabric   []string `json:"fabric"`
	Style    []string `json:"style"`
	Work     []string `json:"work"`
	Occasion []string `json:"occasion"`
	WearType []string `json:"wear_type"`
}

// Source implements source.Source with read-only SQL.
type Source struct {
	db     database.DBTX
	tracer database.QueryTracer
}

var _ source.Source = (*Source)(nil)

// New creates a postgres source over db.
func New(db database.DBTX, tracer database.QueryTracer) *Source {
	return &Source{db: db, tracer: tracer}
}

// ListVisibleProducts returns every published product with its category name.
func (s *Source) ListVisibleProducts(ctx context.Context) (_ []domain.Product, err error) {
	ctx, end := s.tracer.Start(ctx, "ListVisibleProducts", listProductsSQL)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("list visible products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p            domain.Product
			categoryID   *string
			categoryName *string
			attrsJSON    []byte
			variantsJSON []byte
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.ShortDescription,
			&categoryID, &categoryName, &p.Tags, &attrsJSON, &p.Images, &p.Stock, &p.Status, &variantsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}

		if categoryID != nil {
			p.Category = &domain.CategoryRef{ID: *categoryID}
			if categoryName != nil {
				p.Category.Name = *categoryName
			}
		}

		if len(attrsJSON) > 0 {
			var attrs attributes
			if err := json.Unmarshal(attrsJSON, &attrs); err != nil {
				return nil, fmt.Errorf("decode attributes of product %s: %w", p.ID, err)
			}
			p.Fabric, p.Style, p.Work, p.Occasion, p.WearType = attrs.Fabric, attrs.Style, attrs.Work, attrs.Occasion, attrs.WearType
		}

		if len(variantsJSON) > 0 {
			if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
				return nil, fmt.Errorf("decode variants of product %s: %w", p.ID, err)
			}
		}

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// ListVisibleCategories returns every active category.
func (s *Source) ListVisibleCategories(ctx context.Context) (_ []domain.Category, err error) {
	ctx, end := s.tracer.Start(ctx, "ListVisibleCategories", listCategoriesSQL)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("list visible categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c := domain.Category{Status: domain.CategoryStatusActive}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}
