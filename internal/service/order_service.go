package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/user"
	"github.com/example/marketplace/internal/partner"
	"github.com/example/marketplace/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMissingPartnerCredentials is returned when a merchant has no stored
// client id / security key to relay a cancellation with.
var ErrMissingPartnerCredentials = errors.New("missing client_id or security_key for this merchant")

// DuplicateKeyError reports a uniqueness violation, naming the offending key.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Value)
}

// PartnerGateway is the outbound interface to the external commerce platform.
type PartnerGateway interface {
	CancelOrder(ctx context.Context, creds partner.Credentials, req partner.CancellationRequest) (*partner.CancelResponse, error)
	ForwardOrder(ctx context.Context, creds partner.Credentials, payload any) (json.RawMessage, error)
}

// BatchResult is the aggregate outcome of a per-item batch operation.
type BatchResult struct {
	Status     order.BatchStatus   `json:"status"`
	OrderItems []order.ItemOutcome `json:"orderItems"`
}

// StatusUpdateResult is the outcome of an item status update. Status is never
// FAILED: even when every item fails the endpoint reports PARTIAL_SUCCESS.
// That asymmetry with the other batch operations is deliberate.
type StatusUpdateResult struct {
	Status     order.BatchStatus   `json:"status"`
	OrderItems []order.ItemOutcome `json:"orderItems"`
	Error      string              `json:"error"`
}

// MarketplaceCancellation is a cancellation initiated by the marketplace side,
// identified by display order number and merchant username.
type MarketplaceCancellation struct {
	SaleOrderCode string
	CancelledSKUs []order.CancelledSKU
	Reason        string
	MerchantID    string
}

// OrderService owns the order lifecycle: creation, the line-item status
// workflow, and relaying to the partner platform.
type OrderService struct {
	orders       store.OrderStore
	users        store.UserStore
	partner      PartnerGateway
	forwardCreds partner.Credentials
	logger       *zap.Logger
}

func NewOrderService(orders store.OrderStore, users store.UserStore, gw PartnerGateway, forwardCreds partner.Credentials, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:       orders,
		users:        users,
		partner:      gw,
		forwardCreds: forwardCreds,
		logger:       logger,
	}
}

// Create persists a new order for the given user. Line items are created
// atomically with the order and never independently afterward. Line-item ids
// must be unique system-wide; the first duplicate found, in the payload or in
// the store, aborts the whole creation.
func (s *OrderService) Create(ctx context.Context, userID string, o *order.Order) (*order.Order, error) {
	if len(o.OrderItems) == 0 {
		return nil, order.ErrEmptyOrder
	}

	itemIDs := make([]string, 0, len(o.OrderItems))
	seen := make(map[string]struct{}, len(o.OrderItems))
	for _, it := range o.OrderItems {
		if _, dup := seen[it.OrderItemID]; dup {
			return nil, &DuplicateKeyError{Field: "orderItemId", Value: it.OrderItemID}
		}
		seen[it.OrderItemID] = struct{}{}
		itemIDs = append(itemIDs, it.OrderItemID)
	}
	if dup, err := s.orders.ExistingItemID(ctx, itemIDs); err != nil {
		return nil, err
	} else if dup != "" {
		return nil, &DuplicateKeyError{Field: "orderItemId", Value: dup}
	}

	now := time.Now().UTC()
	o.ID = uuid.New().String()
	o.UserID = userID
	if o.DisplayOrderNumber == "" {
		o.DisplayOrderNumber = o.ID
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", o.ID),
		zap.String("userId", userID),
		zap.Int("items", len(o.OrderItems)))
	return o, nil
}

// CancelBySeller applies seller-side cancellations to one order. The order
// must belong to the calling seller; absence and ownership mismatch are
// reported identically so callers cannot probe for other sellers' orders.
// The order is saved once regardless of how many entries failed.
func (s *OrderService) CancelBySeller(ctx context.Context, sellerID, orderID string, reqs []order.CancelItemRequest) (*BatchResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != sellerID {
		return nil, order.ErrOrderNotFound
	}

	failed := order.CancelItems(o, reqs)
	o.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if failed == nil {
		failed = []order.ItemOutcome{}
	}
	return &BatchResult{
		Status:     order.ClassifyBatch(len(reqs), len(failed)),
		OrderItems: failed,
	}, nil
}

// Dispatch transitions the referenced line items to DISPATCHED. A single call
// may span multiple orders; each touched order is saved once after all of its
// items are processed. Returns one outcome per requested item, empty error
// message on success.
func (s *OrderService) Dispatch(ctx context.Context, orderItemIDs []string) ([]order.ItemOutcome, error) {
	orders, err := s.orders.FindByItemIDs(ctx, orderItemIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrNoMatchingItems
	}

	outcomes := order.DispatchItems(orders, orderItemIDs)

	now := time.Now().UTC()
	for _, o := range orders {
		o.UpdatedAt = now
		if err := s.orders.Save(ctx, o); err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

// UpdateItemStatuses overwrites line-item statuses on one order and saves it
// once. Successful entries are listed before failed ones.
func (s *OrderService) UpdateItemStatuses(ctx context.Context, orderID string, reqs []order.StatusUpdateRequest) (*StatusUpdateResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	updated, failed := order.UpdateItemStatuses(o, reqs)
	o.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	result := &StatusUpdateResult{
		Status:     order.BatchSuccess,
		OrderItems: append(updated, failed...),
	}
	if result.OrderItems == nil {
		result.OrderItems = []order.ItemOutcome{}
	}
	if len(failed) > 0 {
		result.Status = order.BatchPartialSuccess
		result.Error = "Some items could not be updated"
	}
	return result, nil
}

// CancelByMarketplace validates a marketplace-initiated cancellation, relays
// it to the partner platform with the merchant's stored credentials, and only
// mutates local state once the platform confirms. Validation is all-or-nothing:
// a single unknown product/variant pair fails the request before any remote
// call happens.
func (s *OrderService) CancelByMarketplace(ctx context.Context, req MarketplaceCancellation) (*partner.CancelResponse, error) {
	merchant, err := s.users.FindByUsername(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, user.ErrUserNotFound
	}
	if !merchant.HasPartnerCredentials() {
		return nil, ErrMissingPartnerCredentials
	}

	o, err := s.orders.FindByDisplayNumber(ctx, req.SaleOrderCode)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	if err := order.ValidateMarketplaceCancellation(o, req.CancelledSKUs); err != nil {
		return nil, err
	}

	skus := make([]partner.CancelledSKU, len(req.CancelledSKUs))
	for i, sku := range req.CancelledSKUs {
		skus[i] = partner.CancelledSKU{ProductID: sku.ProductID, VariantID: sku.VariantID}
	}
	resp, err := s.partner.CancelOrder(ctx, partner.Credentials{
		ClientID:    merchant.ClientID,
		MerchantID:  merchant.Username,
		SecurityKey: merchant.SecurityKey,
	}, partner.CancellationRequest{
		SaleOrderCode:      req.SaleOrderCode,
		CancelledSkuCodes:  skus,
		CancellationReason: req.Reason,
	})
	if err != nil {
		s.logger.Error("partner cancellation call failed",
			zap.String("saleOrderCode", req.SaleOrderCode),
			zap.Error(err))
		return nil, err
	}
	if !resp.Confirmed() {
		return nil, partner.ErrCancellationRejected
	}

	order.ApplyMarketplaceCancellation(o, req.CancelledSKUs)
	o.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled by marketplace",
		zap.String("orderId", o.ID),
		zap.String("saleOrderCode", req.SaleOrderCode))
	return resp, nil
}

// Forward relays an arbitrary order payload to the partner platform with the
// service-wide credentials. Volatile bookkeeping fields are stripped first.
func (s *OrderService) Forward(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	delete(payload, "createdAt")
	delete(payload, "updatedAt")
	return s.partner.ForwardOrder(ctx, s.forwardCreds, payload)
}
