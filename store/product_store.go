package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ProductStore runs the product queries against the relational store.
type ProductStore struct {
	db *bun.DB
}

// NewProductStore creates a ProductStore over the given database handle.
func NewProductStore(db *bun.DB) *ProductStore {
	return &ProductStore{db: db}
}

// GetByID returns the product with the given id, or sql.ErrNoRows.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*Product, error) {
	product := new(Product)
	err := s.db.NewSelect().Model(product).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// List returns one page of products under the query's filter, sort and
// paging values.
func (s *ProductStore) List(ctx context.Context, q ListQuery) ([]Product, error) {
	products := make([]Product, 0, q.Limit)

	sel := s.db.NewSelect().Model(&products).
		OrderExpr("? ?", bun.Ident(q.SortColumn), bun.Safe(q.SortOrder)).
		Limit(q.Limit).
		Offset(q.Offset)
	if q.Category != "" {
		sel = sel.Where("p.category = ?", q.Category)
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the number of products matching the optional category
// filter.
func (s *ProductStore) Count(ctx context.Context, category string) (int, error) {
	sel := s.db.NewSelect().Model((*Product)(nil))
	if category != "" {
		sel = sel.Where("p.category = ?", category)
	}
	return sel.Count(ctx)
}

// Insert stores a new product and fills in its generated id.
func (s *ProductStore) Insert(ctx context.Context, product *Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(product).Exec(ctx); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields to the product with the given id,
// touches updated_at, and returns the resulting row. sql.ErrNoRows is
// returned when no row was affected.
func (s *ProductStore) Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error) {
	upd := s.db.NewUpdate().Model((*Product)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)

	if patch.Name != nil {
		upd = upd.Set("name = ?", *patch.Name)
	}
	if patch.Description != nil {
		upd = upd.Set("description = ?", *patch.Description)
	}
	if patch.Price != nil {
		upd = upd.Set("price = ?", *patch.Price)
	}
	if patch.Category != nil {
		upd = upd.Set("category = ?", *patch.Category)
	}
	if patch.InStock != nil {
		upd = upd.Set("in_stock = ?", *patch.InStock)
	}

	res, err := upd.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	return s.GetByID(ctx, id)
}

// Delete removes the product with the given id and returns the number of
// rows removed.
func (s *ProductStore) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.NewDelete().Model((*Product)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete product %d: %w", id, err)
	}
	return res.RowsAffected()
}
