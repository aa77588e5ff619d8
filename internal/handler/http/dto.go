package http

import "github.com/utafrali/catalogsearch/internal/domain"

// ProductRequest is the JSON body of PUT /api/v1/search/products.
type ProductRequest struct {
	ID               string           `json:"id" validate:"required,docid,max=64"`
	Name             string           `json:"name" validate:"required,min=1,max=500"`
	Slug             string           `json:"slug" validate:"max=500"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description"`
	Category         *CategoryRef     `json:"category"`
	Tags             []string         `json:"tags" validate:"max=100"`
	Fabric           []string         `json:"fabric" validate:"max=50"`
	Style            []string         `json:"style" validate:"max=50"`
	Work             []string         `json:"work" validate:"max=50"`
	Occasion         []string         `json:"occasion" validate:"max=50"`
	WearType         []string         `json:"wear_type" validate:"max=50"`
	Images           []string         `json:"images" validate:"max=50"`
	Stock            *int             `json:"stock" validate:"omitempty,gte=0"`
	Status           string           `json:"status" validate:"omitempty,oneof=draft published archived"`
	Variants         []VariantRequest `json:"variants" validate:"max=200,dive"`
}

// CategoryRef names the product's category.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"max=255"`
}

// VariantRequest is one colour variant of a product.
type VariantRequest struct {
	ColorName string          `json:"color_name" validate:"max=100"`
	Sizes     []PriceTierBody `json:"sizes" validate:"max=50,dive"`
}

// PriceTierBody prices one size in minor units.
type PriceTierBody struct {
	Size            string `json:"size"`
	Price           int64  `json:"price" validate:"gte=0"`
	DiscountedPrice int64  `json:"discounted_price" validate:"gte=0"`
	Stock           int    `json:"stock" validate:"gte=0"`
}

// CategoryRequest is the JSON body of PUT /api/v1/search/categories.
type CategoryRequest struct {
	ID          string  `json:"id" validate:"required,docid,max=64"`
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Slug        string  `json:"slug" validate:"max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r *ProductRequest) toDomain() domain.Product {
	p := domain.Product{
		ID:               r.ID,
		Name:             r.Name,
		Slug:             r.Slug,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Tags:             r.Tags,
		Fabric:           r.Fabric,
		Style:            r.Style,
		Work:             r.Work,
		Occasion:         r.Occasion,
		WearType:         r.WearType,
		Images:           r.Images,
		Stock:            r.Stock,
		Status:           r.Status,
	}
	if r.Category != nil {
		p.Category = &domain.CategoryRef{ID: r.Category.ID, Name: r.Category.Name}
	}
	for _, v := range r.Variants {
		variant := domain.ProductVariant{ColorName: v.ColorName}
		for _, s := range v.Sizes {
			variant.Sizes = append(variant.Sizes, domain.PriceTier(s))
		}
		p.Variants = append(p.Variants, variant)
	}
	return p
}

func (r *CategoryRequest) toDomain() domain.Category {
	return domain.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Status:      r.Status,
	}
}
