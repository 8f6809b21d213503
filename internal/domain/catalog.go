package domain

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`    // Never negative
	Category    string          `json:"category"` // Category name as listed by the catalog
	Tags        []string        `json:"tags"`
	Images      []string        `json:"images"` // May be empty for a card
	Rating      float64         `json:"rating"` // 0..5
	Stock       int             `json:"stock"`
}

// ProductDetails is a single product together with the reviews the catalog embeds in it.
type ProductDetails struct {
	Product Product  `json:"product"`
	Reviews []Review `json:"reviews"`
}

type CatalogPage struct {
	PageNumber int       `json:"page_number"` // 1-based
	PageSize   int       `json:"page_size"`   // Requested limit
	Items      []Product `json:"items"`       // Items on this page, in catalog order
}

func (p *CatalogPage) HasPrevious() bool {
	return p.PageNumber > 1
}

// HasNext reports whether the catalog may hold more items. The catalog does not report a total,
// so a full page is taken as a hint that another one exists.
func (p *CatalogPage) HasNext() bool {
	return p.PageSize > 0 && len(p.Items) >= p.PageSize
}
