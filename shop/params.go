package shop

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/stDean/prod-ecom-backend/cache"
)

// Listing defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	DefaultSortColumn = "created_at"
	SortAsc           = "asc"
	SortDesc          = "desc"
)

// sortableColumns is the whitelist of columns a listing may sort by.
// Anything else silently falls back to DefaultSortColumn and is never passed
// through to the store.
var sortableColumns = map[string]struct{}{
	"name":       {},
	"price":      {},
	"category":   {},
	"created_at": {},
}

// ListParams carries the raw listing parameters as they arrive from the
// transport. Zero values mean "not supplied".
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Category  string
}

// normalized returns the effective parameters: defaults applied, the limit
// clamped to [1, MaxLimit], the sort column whitelisted and the order
// reduced to asc/desc. Cache keys and store queries are both built from the
// normalized form, so equivalent requests share one listing entry.
func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if _, ok := sortableColumns[p.SortBy]; !ok {
		p.SortBy = DefaultSortColumn
	}
	if p.SortOrder != SortDesc {
		p.SortOrder = SortAsc
	}
	return p
}

// listKeyParams maps the effective parameters onto the cache key scheme.
func (p ListParams) listKeyParams() cache.ListKeyParams {
	return cache.ListKeyParams{
		Page:      p.Page,
		Limit:     p.Limit,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Category:  p.Category,
	}
}

// ProductInput is the payload of a product create. InStock defaults to true
// when omitted.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     *bool   `json:"inStock"`
}

// Validate enforces the create rules: name, description, price and category
// must all be present and non-empty, and the price strictly positive.
func (in ProductInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Description, validation.Required, validation.Length(1, 1000)),
		validation.Field(&in.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&in.Category, validation.Required, validation.Length(1, 100)),
	)
}

// AddItemInput is the payload of an add-to-cart. Quantity defaults to 1 and
// the expiry to thirty days from now when omitted.
type AddItemInput struct {
	ProductID int64   `json:"productId"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Validate enforces the add rules: product id and unit price must be
// present and positive; a supplied quantity must not be negative.
func (in AddItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProductID, validation.Required, validation.Min(int64(1))),
		validation.Field(&in.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&in.Quantity, validation.Min(0)),
	)
}

// parseProductID parses a path-parameter product id. Non-numeric or
// non-positive input is a validation error reported before any store or
// cache access.
func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, invalidField("id", "must be a positive integer")
	}
	return id, nil
}
