// Package adapter converts source-of-truth catalog records into
// IndexedDocuments. All optional-field defaulting happens here so the index
// and query code never deal with missing values.
package adapter

import (
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// ErrMissingID reports a source record without a usable identity.
var ErrMissingID = errors.New("record has no id")

// FromProduct builds the indexed form of a product.
func FromProduct(p *domain.Product) (domain.IndexedDocument, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return domain.IndexedDocument{}, ErrMissingID
	}

	doc := domain.IndexedDocument{
		ID:               p.ID,
		Kind:             domain.KindProduct,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      deref(p.Description),
		ShortDescription: deref(p.ShortDescription),
		Image:            firstNonEmpty(p.Images),
		Status:           p.Status,
		Tags:             orEmpty(p.Tags),
		Fabric:           orEmpty(p.Fabric),
		Style:            orEmpty(p.Style),
		Work:             orEmpty(p.Work),
		Occasion:         orEmpty(p.Occasion),
		WearType:         orEmpty(p.WearType),
		Colors:           colors(p.Variants),
		Pricing:          pricing(p.Variants),
	}
	if p.Category != nil {
		doc.CategoryName = p.Category.Name
	}

	if p.Stock != nil {
		doc.Stock = *p.Stock
	} else {
		for _, v := range p.Variants {
			for _, t := range v.Sizes {
				doc.Stock += t.Stock
			}
		}
	}

	return doc, nil
}

// FromCategory builds the indexed form of a category.
func FromCategory(c *domain.Category) (domain.IndexedDocument, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return domain.IndexedDocument{}, ErrMissingID
	}

	return domain.IndexedDocument{
		ID:          c.ID,
		Kind:        domain.KindCategory,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: deref(c.Description),
		Image:       deref(c.ImageURL),
		Status:      c.Status,
		Tags:        []string{},
		Fabric:      []string{},
		Style:       []string{},
		Work:        []string{},
		Occasion:    []string{},
		WearType:    []string{},
		Colors:      []string{},
	}, nil
}

// pricing finds the tier with the lowest effective price. The effective price
// is the discounted price when positive, otherwise the list price. Tiers with
// no positive price are ignored; nil means the product has no priced tier.
func pricing(variants []domain.ProductVariant) *domain.Pricing {
	var best *domain.Pricing
	for _, v := range variants {
		for _, t := range v.Sizes {
			effective := t.Price
			if t.DiscountedPrice > 0 {
				effective = t.DiscountedPrice
			}
			if effective <= 0 {
				continue
			}
			if best == nil || effective < best.MinPrice {
				best = &domain.Pricing{MinPrice: effective, MRP: t.Price}
			}
		}
	}

	if best != nil && best.MRP > best.MinPrice {
		off := float64(best.MRP-best.MinPrice) / float64(best.MRP) * 100
		best.DiscountPercent = int(math.Round(off))
	}
	return best
}

func colors(variants []domain.ProductVariant) []string {
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		name := strings.TrimSpace(v.ColorName)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// orEmpty copies list so the document never aliases the source record.
func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return slices.Clone(list)
}

func firstNonEmpty(list []string) string {
	for _, s := range list {
		if s != "" {
			return s
		}
	}
	return ""
}
