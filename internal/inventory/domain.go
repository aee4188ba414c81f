package inventory

import (
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
)

// Default page settings.
const (
	DefaultLimit  = 100
	DefaultOffset = 0
)

// Tag is the public shape of a product tag.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color int64  `json:"color"`
}

// Currency is the currency a product is priced in.
type Currency struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

// Product is one row of the inventory listing.
type Product struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	CostPrice float64  `json:"cost_price"`
	Currency  Currency `json:"currency"`
	Tags      []Tag    `json:"tags"`
}

// CreatedProduct echoes a freshly created product.
type CreatedProduct struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CostPrice      float64 `json:"cost_price"`
	SalePrice      float64 `json:"sale_price"`
	Tags           []Tag   `json:"tags"`
	CanBeSold      bool    `json:"can_be_sold"`
	CanBePurchased bool    `json:"can_be_purchased"`
}

// PriceChange reports a product before and after a price update.
type PriceChange struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	PreviousPrice    float64 `json:"previous_price"`
	NewPrice         float64 `json:"new_price"`
	CostPrice        float64 `json:"cost_price"`
	CostPriceUpdated bool    `json:"cost_price_updated"`
	Tags             []Tag   `json:"tags"`
}

// ProductPage is one page of the inventory listing.
type ProductPage struct {
	Products []Product
	Total    int
}

// TagPage is one page of the tag listing.
type TagPage struct {
	Tags  []Tag
	Total int
}

// InventoryFilters echoes the filters of an inventory listing.
type InventoryFilters struct {
	SearchTerm   string `json:"search_term"`
	CategoryID   *int64 `json:"category_id"`
	SearchMethod string `json:"search_method"`
}

// TagFilters echoes the filters of a tag listing.
type TagFilters struct {
	SearchTerm   string `json:"search_term"`
	SearchMethod string `json:"search_method"`
}

// CreateTagInput carries a validated tag creation request.
type CreateTagInput struct {
	Name  string
	Color int64
}

// CreateProductInput carries a validated product creation request.
type CreateProductInput struct {
	Name      string
	Price     float64
	CostPrice *float64
	// TagIDs holds distinct ids in first-seen order.
	TagIDs []int64
}

// UpdatePriceInput carries a validated price update request.
type UpdatePriceInput struct {
	ProductName     string
	Price           float64
	UpdateCostPrice bool
}

func tagFromRecord(r odoo.TagRecord) Tag {
	return Tag{ID: r.ID, Name: r.Name, Color: r.Color}
}

func currencyFromRecord(ref *odoo.Reference) Currency {
	if ref == nil {
		return Currency{}
	}
	id := ref.ID
	return Currency{ID: &id, Name: ref.Name}
}
