// Package store provides the relational source of truth: bun models for the
// products and cart_items tables and explicit query types over them.
//
// The store layer knows nothing about caching. It reports "no rows" through
// database/sql.ErrNoRows (reads) or a zero rows-affected count (writes) and
// leaves mapping to the service-level error taxonomy to its callers.
package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Product is a row of the products table. The id is immutable once
// assigned; updated_at is touched on every write.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p" json:"-"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,notnull" json:"description"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Category    string    `bun:"category,notnull" json:"category"`
	InStock     bool      `bun:"in_stock,notnull" json:"inStock"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// CartItem is a row of the cart_items table. UserID is nil for a guest
// owner. Price is the line total (unit price times quantity), recomputed on
// every mutation. At most one row exists per (product, owner) pair.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ProductID int64     `bun:"product_id,notnull,unique:cart_items_product_owner" json:"productId"`
	UserID    *int64    `bun:"user_id,unique:cart_items_product_owner" json:"userId"`
	Quantity  int       `bun:"quantity,notnull" json:"quantity"`
	UnitPrice float64   `bun:"unit_price,notnull" json:"unit_price"`
	Price     float64   `bun:"price,notnull" json:"price"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

// ProductPatch carries the optional fields of a partial product update. A
// nil field is left untouched; only non-nil fields are applied.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

// IsEmpty reports whether the patch carries no recognized field.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.InStock == nil
}

// ListQuery holds the effective paging, sorting and filtering of a product
// listing query. SortColumn and SortOrder are trusted values: the service
// whitelists them before they reach the store.
type ListQuery struct {
	Offset     int
	Limit      int
	SortColumn string
	SortOrder  string
	Category   string
}
