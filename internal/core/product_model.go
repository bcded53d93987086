package core

import "github.com/shopspring/decimal"

// Product is a catalog entry of one currency store. The currency store is implied by the
// collection holding it; Currency is informational.
// Synced copies carry SyncedFrom and OriginalID, which together identify the source product.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	PiecesPerBox int             `json:"piecesPerBox"`
	Flavors      []string        `json:"flavors"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Currency     Currency        `json:"currency,omitempty"`
	SyncedFrom   Currency        `json:"syncedFrom,omitempty"`
	SyncedAt     Timestamp       `json:"syncedAt,omitzero"`
	OriginalID   string          `json:"originalId,omitempty"`
	Stock        *int            `json:"stock,omitempty"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
}

func (p *Product) SetID(id string) { p.ID = id }

// StockOrZero returns the stock level, treating an unset stock as zero.
func (p Product) StockOrZero() int {
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}

// ProductInput is the admin form for creating a product.
type ProductInput struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	PiecesPerBox int             `json:"piecesPerBox"`
	Flavors      []string        `json:"flavors"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Stock        *int            `json:"stock,omitempty"`
}

// ProductUpdate is a partial product edit; nil fields are left unchanged.
type ProductUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	PiecesPerBox *int             `json:"piecesPerBox,omitempty"`
	Flavors      []string         `json:"flavors,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ImageURL     *string          `json:"imageUrl,omitempty"`
	Stock        *int             `json:"stock,omitempty"`
}

// ImageIndex maps product id to image URL, skipping products without an image.
func ImageIndex(products []Product) map[string]string {
	idx := make(map[string]string, len(products))
	for _, p := range products {
		if p.ID != "" && p.ImageURL != "" {
			idx[p.ID] = p.ImageURL
		}
	}
	return idx
}
