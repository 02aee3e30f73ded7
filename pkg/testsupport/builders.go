// Package testsupport provides row builders for tests: products and cart
// line items with sensible defaults that can be overridden per field.
package testsupport

import (
	"time"

	"github.com/google/uuid"

	"github.com/stDean/prod-ecom-backend/store"
)

// UniqueName returns a name that will not collide with any other row built
// in the same test run.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ProductOption overrides one field of a built product.
type ProductOption func(*store.Product)

// WithName sets the product name.
func WithName(name string) ProductOption {
	return func(p *store.Product) { p.Name = name }
}

// WithPrice sets the product price.
func WithPrice(price float64) ProductOption {
	return func(p *store.Product) { p.Price = price }
}

// WithCategory sets the product category.
func WithCategory(category string) ProductOption {
	return func(p *store.Product) { p.Category = category }
}

// OutOfStock marks the product as not in stock.
func OutOfStock() ProductOption {
	return func(p *store.Product) { p.InStock = false }
}

// NewProduct builds an in-stock product with a unique name and the given
// overrides applied in order.
func NewProduct(opts ...ProductOption) *store.Product {
	p := &store.Product{
		Name:        UniqueName("product"),
		Description: "test product",
		Price:       9.99,
		Category:    "misc",
		InStock:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CartItemOption overrides one field of a built cart line item.
type CartItemOption func(*store.CartItem)

// ForProduct sets the product the line item refers to.
func ForProduct(productID int64) CartItemOption {
	return func(i *store.CartItem) { i.ProductID = productID }
}

// OwnedBy sets the owning user. Builders default to the guest owner.
func OwnedBy(userID int64) CartItemOption {
	return func(i *store.CartItem) { i.UserID = &userID }
}

// WithQuantity sets the quantity and recomputes the line total from the
// unit price.
func WithQuantity(quantity int) CartItemOption {
	return func(i *store.CartItem) {
		i.Quantity = quantity
		i.Price = i.UnitPrice * float64(quantity)
	}
}

// WithUnitPrice sets the unit price and recomputes the line total from the
// quantity.
func WithUnitPrice(unitPrice float64) CartItemOption {
	return func(i *store.CartItem) {
		i.UnitPrice = unitPrice
		i.Price = unitPrice * float64(i.Quantity)
	}
}

// NewCartItem builds a guest-owned single-quantity line item with the given
// overrides applied in order.
func NewCartItem(opts ...CartItemOption) *store.CartItem {
	i := &store.CartItem{
		ProductID: 1,
		Quantity:  1,
		UnitPrice: 9.99,
		Price:     9.99,
		ExpiresAt: time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}
