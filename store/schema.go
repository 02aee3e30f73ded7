package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the products and cart_items tables if they do not
// exist yet. Cart rows hang off their product with cascade delete.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*Product)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*CartItem)(nil)).
		IfNotExists().
		ForeignKey(`("product_id") REFERENCES "products" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create cart_items table: %w", err)
	}
	return nil
}

// ResetSchema drops and recreates every table. Test setup only.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*CartItem)(nil), (*Product)(nil)} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", model, err)
		}
	}
	return CreateSchema(ctx, db)
}
