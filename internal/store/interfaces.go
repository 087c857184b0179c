package store

import (
	"context"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/domain/user"
)

// Find methods return (nil, nil) when the record does not exist; callers
// translate that into their own not-found handling.

// OrderStore persists orders as whole documents. Save rewrites the entire
// order row including its embedded line items; there is no item-level write.
type OrderStore interface {
	Insert(ctx context.Context, o *order.Order) error
	Save(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id string) (*order.Order, error)
	FindByDisplayNumber(ctx context.Context, displayOrderNumber string) (*order.Order, error)
	// FindByItemIDs returns every order containing at least one of the given
	// line-item ids, in creation order.
	FindByItemIDs(ctx context.Context, orderItemIDs []string) ([]*order.Order, error)
	// ExistingItemID returns the first of the given line-item ids already
	// present on any order, or "" when none are.
	ExistingItemID(ctx context.Context, orderItemIDs []string) (string, error)
}

// ProductStore persists products with their embedded variant sequence.
type ProductStore interface {
	Insert(ctx context.Context, p *product.Product) error
	Save(ctx context.Context, p *product.Product) error
	// FindByIDWithVariant returns the product only if it also carries the
	// given variant.
	FindByIDWithVariant(ctx context.Context, productID, variantID string) (*product.Product, error)
	// ExistingVariantID returns the first of the given variant ids already
	// present anywhere in the catalog, or "" when none are.
	ExistingVariantID(ctx context.Context, variantIDs []string) (string, error)
	// SearchLive pages through the seller's products that have at least one
	// live variant, optionally restricted to a SKU. Page numbering starts at 1.
	SearchLive(ctx context.Context, sellerID, sku string, page, size int) ([]*product.Product, error)
	// CountLiveVariants counts the seller's live variants across all products.
	CountLiveVariants(ctx context.Context, sellerID string) (int, error)
}

// UserStore persists seller accounts. Insert returns user.ErrUsernameTaken
// when the username is already registered.
type UserStore interface {
	Insert(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}
