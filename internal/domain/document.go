package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tags an IndexedDocument as a product or a category.
type Kind string

const (
	KindProduct  Kind = "product"
	KindCategory Kind = "category"
)

// ParseKind accepts the two kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindProduct:
		return KindProduct, nil
	case KindCategory:
		return KindCategory, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", s)
	}
}

// Pricing is derived from a product's price tiers, in minor units.
type Pricing struct {
	MinPrice        int64 `json:"min_price"`
	MRP             int64 `json:"mrp"`
	DiscountPercent int   `json:"discount_percent,omitempty"`
}

// IndexedDocument is the denormalized record stored by the index and returned
// in search hits. Pricing is set only for products.
type IndexedDocument struct {
	ID               string   `json:"id"`
	Kind             Kind     `json:"kind"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	CategoryName     string   `json:"category_name"`
	Image            string   `json:"image"`
	Status           string   `json:"status"`
	Stock            int      `json:"stock"`
	Tags             []string `json:"tags"`
	Fabric           []string `json:"fabric"`
	Style            []string `json:"style"`
	Work             []string `json:"work"`
	Occasion         []string `json:"occasion"`
	WearType         []string `json:"wear_type"`
	Colors           []string `json:"colors"`
	Pricing          *Pricing `json:"pricing,omitempty"`
}

// SearchableText joins every field that contributes index tokens.
func (d *IndexedDocument) SearchableText() string {
	parts := []string{d.Name, d.Description, d.ShortDescription, d.CategoryName}
	for _, list := range [][]string{d.Tags, d.Fabric, d.Style, d.Work, d.Occasion, d.WearType, d.Colors} {
		parts = append(parts, list...)
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy that shares no slices or pricing with d.
func (d IndexedDocument) Clone() IndexedDocument {
	out := d
	out.Tags = slices.Clone(d.Tags)
	out.Fabric = slices.Clone(d.Fabric)
	out.Style = slices.Clone(d.Style)
	out.Work = slices.Clone(d.Work)
	out.Occasion = slices.Clone(d.Occasion)
	out.WearType = slices.Clone(d.WearType)
	out.Colors = slices.Clone(d.Colors)
	if d.Pricing != nil {
		p := *d.Pricing
		out.Pricing = &p
	}
	return out
}
