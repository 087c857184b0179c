package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/user"
	"github.com/example/marketplace/internal/partner"
	"github.com/example/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handlers) CreateOrderByUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.CurrentUserID(r.Context())

	var req struct {
		order.Order
		ShippingAddress *order.Address `json:"shippingAddress"`
		BillingAddress  *order.Address `json:"billingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.OrderDate.IsZero() || req.OrderStatus == "" || req.SLA.IsZero() ||
		len(req.OrderItems) == 0 || req.ShippingAddress == nil || req.BillingAddress == nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing required fields",
			"missingFields": map[string]bool{
				"orderDate":       !req.OrderDate.IsZero(),
				"orderStatus":     req.OrderStatus != "",
				"sla":             !req.SLA.IsZero(),
				"orderItems":      len(req.OrderItems) > 0,
				"shippingAddress": req.ShippingAddress != nil,
				"billingAddress":  req.BillingAddress != nil,
			},
		})
		return
	}

	if !order.ValidStatus(req.OrderStatus) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Validation error",
			"details": []string{"invalid orderStatus: " + string(req.OrderStatus)},
		})
		return
	}

	o := req.Order
	o.ShippingAddress = *req.ShippingAddress
	o.BillingAddress = *req.BillingAddress
	for i := range o.OrderItems {
		if o.OrderItems[i].Quantity == 0 {
			o.OrderItems[i].Quantity = 1
		}
	}

	created, err := h.orders.Create(r.Context(), userID, &o)
	if err != nil {
		var dup *service.DuplicateKeyError
		if errors.As(err, &dup) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"success":      false,
				"error":        "Duplicate order item ID",
				"duplicateKey": map[string]string{dup.Field: dup.Value},
			})
			return
		}
		if errors.Is(err, order.ErrEmptyOrder) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Missing required fields",
			})
			return
		}
		h.logger.Error("order creation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   created,
	})
}

// ForwardOrder relays an order payload to the partner API, stripping the
// volatile timestamp fields first.
func (h *Handlers) ForwardOrder(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request payload",
		})
		return
	}

	data, err := h.orders.Forward(r.Context(), payload)
	if err != nil {
		h.logger.Error("order forwarding failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Error forwarding order to partner",
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order successfully forwarded to partner",
		"data":    data,
	})
}

func (h *Handlers) CancelOrderBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.CurrentUserID(r.Context())

	var req struct {
		OrderID    string                    `json:"orderId"`
		OrderItems []order.CancelItemRequest `json:"orderItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || len(req.OrderItems) == 0 {
		respondMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.orders.CancelBySeller(r.Context(), sellerID, req.OrderID, req.OrderItems)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondMessage(w, http.StatusNotFound, "Order not found or does not belong to the seller")
			return
		}
		h.logger.Error("order cancellation failed", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) DispatchOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderItems []struct {
			OrderItemID string `json:"orderItemId"`
		} `json:"orderItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.OrderItems) == 0 {
		respondMessage(w, http.StatusBadRequest, "Order items are required")
		return
	}

	ids := make([]string, len(req.OrderItems))
	for i, item := range req.OrderItems {
		ids[i] = item.OrderItemID
	}

	outcomes, err := h.orders.Dispatch(r.Context(), ids)
	if err != nil {
		if errors.Is(err, order.ErrNoMatchingItems) {
			respondMessage(w, http.StatusNotFound, "No matching order items found")
			return
		}
		h.logger.Error("dispatch failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Internal Server Error",
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     order.BatchSuccess,
		"orderItems": outcomes,
	})
}

func (h *Handlers) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req struct {
		OrderItems []order.StatusUpdateRequest `json:"orderItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.OrderItems) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status": "FAILED",
			"error":  "Invalid orderItems payload",
		})
		return
	}

	result, err := h.orders.UpdateItemStatuses(r.Context(), orderID, req.OrderItems)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]string{
				"status": "FAILED",
				"error":  "Order not found",
			})
			return
		}
		h.logger.Error("status update failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "FAILED",
			"error":  "Internal Server Error",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) CancelOrderByMarketplace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SaleOrderCode      string               `json:"saleOrderCode"`
		CancelledSkuCodes  []order.CancelledSKU `json:"cancelledSkuCodes"`
		CancellationReason string               `json:"cancellationReason"`
		MerchantID         string               `json:"merchantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SaleOrderCode == "" || len(req.CancelledSkuCodes) == 0 ||
		req.CancellationReason == "" || req.MerchantID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status": "FAILED",
			"error":  "Invalid request payload",
		})
		return
	}

	resp, err := h.orders.CancelByMarketplace(r.Context(), service.MarketplaceCancellation{
		SaleOrderCode: req.SaleOrderCode,
		CancelledSKUs: req.CancelledSkuCodes,
		Reason:        req.CancellationReason,
		MerchantID:    req.MerchantID,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{
				"status": "FAILED",
				"error":  "Merchant not found",
			})
		case errors.Is(err, service.ErrMissingPartnerCredentials):
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"status": "FAILED",
				"error":  "Missing client_id or security_key for this merchant",
			})
		case errors.Is(err, order.ErrOrderNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{
				"status": "FAILED",
				"error":  "Order not found",
			})
		case errors.Is(err, order.ErrUnknownSKU):
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"status": "FAILED",
				"error":  "Invalid productId or variantId in cancelledSkuCodes",
			})
		case errors.Is(err, partner.ErrCancellationRejected):
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "FAILED",
				"error":  "Failed to update cancellation with partner",
			})
		default:
			h.logger.Error("marketplace cancellation failed", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "FAILED",
				"error":  "Internal server error",
			})
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "SUCCESS",
		"message": "Order cancellation updated successfully",
		"data":    resp.Raw,
	})
}
