package domain

// Product is a catalog product as returned by the source of truth. Optional
// fields are pointers or nil slices; the adapter resolves them to defaults.
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"short_description,omitempty"`
	Category         *CategoryRef     `json:"category,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Fabric           []string         `json:"fabric,omitempty"`
	Style            []string         `json:"style,omitempty"`
	Work             []string         `json:"work,omitempty"`
	Occasion         []string         `json:"occasion,omitempty"`
	WearType         []string         `json:"wear_type,omitempty"`
	Images           []string         `json:"images,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	Status           string           `json:"status"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

// CategoryRef is the category a product belongs to, embedded in the product record.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductVariant is a colour variant with its per-size price tiers.
type ProductVariant struct {
	ColorName string      `json:"color_name"`
	Sizes     []PriceTier `json:"sizes,omitempty"`
}

// PriceTier prices one size of a variant in minor units. A zero
// DiscountedPrice means no discount applies.
type PriceTier struct {
	Size            string `json:"size"`
	Price           int64  `json:"price"`
	DiscountedPrice int64  `json:"discounted_price"`
	Stock           int    `json:"stock"`
}

// Category is a catalog category as returned by the source of truth.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Status      string  `json:"status"`
}

// Visibility states reported by the source of truth.
const (
	ProductStatusPublished = "published"
	CategoryStatusActive   = "active"
)
