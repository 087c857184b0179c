package service

import (
	"context"
	"fmt"
	"time"

	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DuplicateVariantError reports a variant id collision, either inside one
// request payload or against the existing catalog.
type DuplicateVariantError struct {
	VariantID string
	InCatalog bool
}

func (e *DuplicateVariantError) Error() string {
	if e.InCatalog {
		return fmt.Sprintf("duplicate variantId found in database: %s", e.VariantID)
	}
	return fmt.Sprintf("duplicate variantId found within request payload: %s", e.VariantID)
}

// InventoryUpdate is one entry of a bulk inventory update.
type InventoryUpdate struct {
	ProductID    string `json:"productId"`
	VariantID    string `json:"variantId"`
	Inventory    int    `json:"inventory"`
	HSNCode      string `json:"hsnCode,omitempty"`
	FacilityCode string `json:"facilityCode,omitempty"`
}

// FailedInventoryItem is one entry of the failure list returned by
// UpdateInventory.
type FailedInventoryItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Message   string `json:"message"`
}

// InventoryResult aggregates a bulk inventory update: SUCCESS when every entry
// applied, FAILED when none did, PARTIAL_SUCCESS otherwise.
type InventoryResult struct {
	Status            string                `json:"status"`
	FailedProductList []FailedInventoryItem `json:"failedProductList"`
}

// ListProductsParams pages through a seller's live catalog.
type ListProductsParams struct {
	Page int
	Size int
	SKU  string
}

// ProductService owns the catalog: product creation, listing, and inventory.
type ProductService struct {
	products store.ProductStore
	logger   *zap.Logger
}

func NewProductService(products store.ProductStore, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// Create persists a new product for the seller. Variant ids must be unique
// across the whole catalog: a collision with any existing product rejects the
// creation, as does a duplicate inside the payload itself.
func (s *ProductService) Create(ctx context.Context, sellerID string, p *product.Product) (*product.Product, error) {
	if dup, ok := product.DuplicateVariantID(p.Variants); ok {
		return nil, &DuplicateVariantError{VariantID: dup}
	}

	variantIDs := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		variantIDs[i] = v.VariantID
	}
	if dup, err := s.products.ExistingVariantID(ctx, variantIDs); err != nil {
		return nil, err
	} else if dup != "" {
		return nil, &DuplicateVariantError{VariantID: dup, InCatalog: true}
	}

	p.ID = uuid.New().String()
	p.SellerID = sellerID
	p.Created = time.Now().UTC()

	if err := s.products.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("productId", p.ID),
		zap.String("sellerId", sellerID),
		zap.Int("variants", len(p.Variants)))
	return p, nil
}

// List returns a page of the seller's products that have live variants,
// keeping only the live variants in each result.
func (s *ProductService) List(ctx context.Context, sellerID string, params ListProductsParams) ([]*product.Product, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Size < 1 {
		params.Size = 50
	}
	products, err := s.products.SearchLive(ctx, sellerID, params.SKU, params.Page, params.Size)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*product.Product{}
	}
	return products, nil
}

// Count returns the number of the seller's live variants.
func (s *ProductService) Count(ctx context.Context, sellerID string) (int, error) {
	return s.products.CountLiveVariants(ctx, sellerID)
}

// UpdateInventory applies a bulk inventory update, accumulating per-entry
// failures instead of aborting. Each touched product is saved whole.
func (s *ProductService) UpdateInventory(ctx context.Context, updates []InventoryUpdate) (*InventoryResult, error) {
	failed := make([]FailedInventoryItem, 0)

	for _, u := range updates {
		if u.ProductID == "" || u.VariantID == "" || u.Inventory == 0 {
			failed = append(failed, FailedInventoryItem{
				ProductID: u.ProductID,
				VariantID: u.VariantID,
				Message:   "Missing required fields",
			})
			continue
		}

		p, err := s.products.FindByIDWithVariant(ctx, u.ProductID, u.VariantID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			failed = append(failed, FailedInventoryItem{
				ProductID: u.ProductID,
				VariantID: u.VariantID,
				Message:   "Product or variant not found",
			})
			continue
		}

		p.FindVariant(u.VariantID).Inventory = u.Inventory
		if err := s.products.Save(ctx, p); err != nil {
			s.logger.Error("inventory save failed",
				zap.String("productId", u.ProductID),
				zap.String("variantId", u.VariantID),
				zap.Error(err))
			failed = append(failed, FailedInventoryItem{
				ProductID: u.ProductID,
				VariantID: u.VariantID,
				Message:   "Inventory update failed",
			})
		}
	}

	status := "SUCCESS"
	switch {
	case len(failed) == len(updates):
		status = "FAILED"
	case len(failed) > 0:
		status = "PARTIAL_SUCCESS"
	}
	return &InventoryResult{Status: status, FailedProductList: failed}, nil
}
