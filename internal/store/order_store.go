package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/lib/pq"
)

const orderColumns = `id, user_id, display_order_number, order_date, order_status, sla,
	priority, payment_type, order_price, order_items, tax_exempted, c_form_provided,
	third_party_shipping, shipping_address, billing_address, gstin, additional_info,
	created_at, updated_at`

// PostgresOrderStore keeps each order as one row with its line items in a
// JSONB column. Every save rewrites the whole row, last write wins.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Insert(ctx context.Context, o *order.Order) error {
	itemsJSON, priceJSON, shipJSON, billJSON, err := marshalOrderDocs(o)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, o.ID, o.UserID, o.DisplayOrderNumber, o.OrderDate, o.OrderStatus, o.SLA,
		o.Priority, o.PaymentType, priceJSON, itemsJSON, o.TaxExempted, o.CFormProvided,
		o.ThirdPartyShipping, shipJSON, billJSON, o.GSTIN, o.AdditionalInfo,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) Save(ctx context.Context, o *order.Order) error {
	itemsJSON, priceJSON, shipJSON, billJSON, err := marshalOrderDocs(o)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET
			display_order_number = $2,
			order_date = $3,
			order_status = $4,
			sla = $5,
			priority = $6,
			payment_type = $7,
			order_price = $8,
			order_items = $9,
			tax_exempted = $10,
			c_form_provided = $11,
			third_party_shipping = $12,
			shipping_address = $13,
			billing_address = $14,
			gstin = $15,
			additional_info = $16,
			updated_at = $17
		WHERE id = $1
	`, o.ID, o.DisplayOrderNumber, o.OrderDate, o.OrderStatus, o.SLA,
		o.Priority, o.PaymentType, priceJSON, itemsJSON, o.TaxExempted, o.CFormProvided,
		o.ThirdPartyShipping, shipJSON, billJSON, o.GSTIN, o.AdditionalInfo, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *PostgresOrderStore) FindByDisplayNumber(ctx context.Context, displayOrderNumber string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE display_order_number = $1`, displayOrderNumber)
	return scanOrder(row)
}

func (s *PostgresOrderStore) FindByItemIDs(ctx context.Context, orderItemIDs []string) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(o.order_items) it
			WHERE it->>'orderItemId' = ANY($1)
		)
		ORDER BY o.created_at
	`, pq.Array(orderItemIDs))
	if err != nil {
		return nil, fmt.Errorf("find orders by item ids: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresOrderStore) ExistingItemID(ctx context.Context, orderItemIDs []string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT it->>'orderItemId'
		FROM orders o, jsonb_array_elements(o.order_items) it
		WHERE it->>'orderItemId' = ANY($1)
		LIMIT 1
	`, pq.Array(orderItemIDs)).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check order item ids: %w", err)
	}
	return id, nil
}

func marshalOrderDocs(o *order.Order) (items, price, ship, bill []byte, err error) {
	if items, err = json.Marshal(o.OrderItems); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal order items: %w", err)
	}
	if o.OrderPrice != nil {
		if price, err = json.Marshal(o.OrderPrice); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal order price: %w", err)
		}
	}
	if ship, err = json.Marshal(o.ShippingAddress); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal shipping address: %w", err)
	}
	if bill, err = json.Marshal(o.BillingAddress); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal billing address: %w", err)
	}
	return items, price, ship, bill, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var itemsJSON, priceJSON, shipJSON, billJSON []byte
	err := row.Scan(&o.ID, &o.UserID, &o.DisplayOrderNumber, &o.OrderDate, &o.OrderStatus,
		&o.SLA, &o.Priority, &o.PaymentType, &priceJSON, &itemsJSON, &o.TaxExempted,
		&o.CFormProvided, &o.ThirdPartyShipping, &shipJSON, &billJSON, &o.GSTIN,
		&o.AdditionalInfo, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.OrderItems); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if len(priceJSON) > 0 {
		o.OrderPrice = &order.Price{}
		if err := json.Unmarshal(priceJSON, o.OrderPrice); err != nil {
			return nil, fmt.Errorf("unmarshal order price: %w", err)
		}
	}
	if err := json.Unmarshal(shipJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(billJSON, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal billing address: %w", err)
	}
	return &o, nil
}
