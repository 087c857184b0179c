package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/marketplace/internal/domain/product"
	"github.com/lib/pq"
)

const productColumns = `id, seller_id, parent_title, brand, variants,
	commission_percentage, payment_gateway_charge, logistics_cost, additional_info, created`

// PostgresProductStore keeps each product as one row with its variants in a
// JSONB column, rewritten whole on save.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Insert(ctx context.Context, p *product.Product) error {
	variantsJSON, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.SellerID, p.ParentTitle, p.Brand, variantsJSON,
		p.CommissionPercentage, p.PaymentGatewayCharge, p.LogisticsCost, p.AdditionalInfo, p.Created)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) Save(ctx context.Context, p *product.Product) error {
	variantsJSON, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			parent_title = $2,
			brand = $3,
			variants = $4,
			commission_percentage = $5,
			payment_gateway_charge = $6,
			logistics_cost = $7,
			additional_info = $8
		WHERE id = $1
	`, p.ID, p.ParentTitle, p.Brand, variantsJSON,
		p.CommissionPercentage, p.PaymentGatewayCharge, p.LogisticsCost, p.AdditionalInfo)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (s *PostgresProductStore) FindByIDWithVariant(ctx context.Context, productID, variantID string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products p
		WHERE p.id = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(p.variants) v
			WHERE v->>'variantId' = $2
		  )
	`, productID, variantID)
	return scanProduct(row)
}

func (s *PostgresProductStore) ExistingVariantID(ctx context.Context, variantIDs []string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT v->>'variantId'
		FROM products p, jsonb_array_elements(p.variants) v
		WHERE v->>'variantId' = ANY($1)
		LIMIT 1
	`, pq.Array(variantIDs)).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check variant ids: %w", err)
	}
	return id, nil
}

func (s *PostgresProductStore) SearchLive(ctx context.Context, sellerID, sku string, page, size int) ([]*product.Product, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products p
		WHERE p.seller_id = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(p.variants) v
			WHERE (v->>'live')::boolean
			  AND ($2 = '' OR v->>'sku' = $2)
		  )
		ORDER BY p.created DESC
		OFFSET $3 LIMIT $4
	`, sellerID, sku, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		// The response carries only live variants, mirroring the search filter.
		p.Variants = p.LiveVariants()
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PostgresProductStore) CountLiveVariants(ctx context.Context, sellerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM products p, jsonb_array_elements(p.variants) v
		WHERE p.seller_id = $1 AND (v->>'live')::boolean
	`, sellerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count live variants: %w", err)
	}
	return count, nil
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var variantsJSON []byte
	err := row.Scan(&p.ID, &p.SellerID, &p.ParentTitle, &p.Brand, &variantsJSON,
		&p.CommissionPercentage, &p.PaymentGatewayCharge, &p.LogisticsCost,
		&p.AdditionalInfo, &p.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	return &p, nil
}
