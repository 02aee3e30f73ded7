package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// CartStore runs the cart line item queries against the relational store.
// Every operation is scoped to one cart owner; a nil user id denotes the
// guest owner and matches rows whose user_id is NULL.
type CartStore struct {
	db *bun.DB
}

// NewCartStore creates a CartStore over the given database handle.
func NewCartStore(db *bun.DB) *CartStore {
	return &CartStore{db: db}
}

// Insert stores a new line item and fills in its generated id. A second
// insert for the same (product, owner) pair fails on the unique constraint;
// that error passes through unchanged.
func (s *CartStore) Insert(ctx context.Context, item *CartItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// ListByOwner returns every line item of the given owner.
func (s *CartStore) ListByOwner(ctx context.Context, userID *int64) ([]CartItem, error) {
	var items []CartItem
	sel := ownerScope(s.db.NewSelect().Model(&items), userID)
	if err := sel.Order("ci.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateQuantity sets the quantity and line total of the owner's line item
// for one product and touches updated_at.
func (s *CartStore) UpdateQuantity(ctx context.Context, userID *int64, productID int64, quantity int, price float64) error {
	upd := s.db.NewUpdate().Model((*CartItem)(nil)).
		Set("quantity = ?", quantity).
		Set("price = ?", price).
		Set("updated_at = ?", time.Now().UTC()).
		Where("product_id = ?", productID)
	upd = ownerScopeUpdate(upd, userID)

	if _, err := upd.Exec(ctx); err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	return nil
}

// Delete removes the owner's line item for one product. Removing an absent
// item is not an error.
func (s *CartStore) Delete(ctx context.Context, userID *int64, productID int64) error {
	del := s.db.NewDelete().Model((*CartItem)(nil)).Where("product_id = ?", productID)
	del = ownerScopeDelete(del, userID)

	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// DeleteByOwner removes every line item of the given owner in one shot.
func (s *CartStore) DeleteByOwner(ctx context.Context, userID *int64) error {
	del := ownerScopeDelete(s.db.NewDelete().Model((*CartItem)(nil)), userID)
	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ClaimGuestItem re-points the ownerless line item for one product to the
// given user. The match is "product_id where user_id IS NULL", which can
// claim a row left behind by a different anonymous session when several
// guests share storage without a session-scoping key; that gap is inherited
// from the merge contract and not resolved here.
func (s *CartStore) ClaimGuestItem(ctx context.Context, productID, userID int64) error {
	_, err := s.db.NewUpdate().Model((*CartItem)(nil)).
		Set("user_id = ?", userID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("product_id = ?", productID).
		Where("user_id IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("claim guest cart item: %w", err)
	}
	return nil
}

// GetByOwnerProduct returns the owner's line item for one product, or
// sql.ErrNoRows.
func (s *CartStore) GetByOwnerProduct(ctx context.Context, userID *int64, productID int64) (*CartItem, error) {
	item := new(CartItem)
	sel := ownerScope(s.db.NewSelect().Model(item), userID).Where("ci.product_id = ?", productID)
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

func ownerScope(q *bun.SelectQuery, userID *int64) *bun.SelectQuery {
	if userID == nil {
		return q.Where("ci.user_id IS NULL")
	}
	return q.Where("ci.user_id = ?", *userID)
}

func ownerScopeUpdate(q *bun.UpdateQuery, userID *int64) *bun.UpdateQuery {
	if userID == nil {
		return q.Where("user_id IS NULL")
	}
	return q.Where("user_id = ?", *userID)
}

func ownerScopeDelete(q *bun.DeleteQuery, userID *int64) *bun.DeleteQuery {
	if userID == nil {
		return q.Where("user_id IS NULL")
	}
	return q.Where("user_id = ?", *userID)
}
