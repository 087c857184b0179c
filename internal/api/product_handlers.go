package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/service"
	"go.uber.org/zap"
)

// GetProducts lists the caller's live catalog. publishedStatus is a mandatory
// query parameter and PUBLISHED is its only accepted value.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.CurrentUserID(r.Context())
	q := r.URL.Query()

	if q.Get("publishedStatus") != "PUBLISHED" {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"code":    400,
			"message": "Invalid publishedStatus",
		})
		return
	}

	params := service.ListProductsParams{SKU: q.Get("skus")}
	if page, err := strconv.Atoi(q.Get("pageNumber")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		params.Size = size
	}

	products, err := h.products.List(r.Context(), sellerID, params)
	if err != nil {
		h.logger.Error("product listing failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"code":    500,
			"message": "Internal Server Error",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": products,
	})
}

type createVariantRequest struct {
	ImageURL           string             `json:"imageUrl"`
	ProductURL         string             `json:"productUrl"`
	VariantID          string             `json:"variantId"`
	Title              string             `json:"title"`
	SKU                string             `json:"sku"`
	Size               string             `json:"size"`
	Color              string             `json:"color"`
	Live               *bool              `json:"live"` // defaults to true when absent
	ProductDescription string             `json:"productDescription"`
	ItemPrice          *product.ItemPrice `json:"itemPrice"`
	Inventory          int                `json:"inventory"`
	BlockedInventory   int                `json:"blockedInventory"`
	Pendency           int                `json:"pendency"`
}

type createProductRequest struct {
	ParentTitle          string                 `json:"parentTitle"`
	Brand                string                 `json:"brand"`
	Variants             []createVariantRequest `json:"variants"`
	CommissionPercentage float64                `json:"commissionPercentage"`
	PaymentGatewayCharge float64                `json:"paymentGatewayCharge"`
	LogisticsCost        float64                `json:"logisticsCost"`
	AdditionalInfo       string                 `json:"additionalInfo"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.CurrentUserID(r.Context())

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.ParentTitle == "" || req.Brand == "" || len(req.Variants) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing required fields",
			"missingFields": map[string]bool{
				"parentTitle": req.ParentTitle != "",
				"brand":       req.Brand != "",
				"variants":    len(req.Variants) > 0,
			},
		})
		return
	}

	variants := make([]product.Variant, len(req.Variants))
	for i, v := range req.Variants {
		live := true
		if v.Live != nil {
			live = *v.Live
		}
		variants[i] = product.Variant{
			ImageURL:           v.ImageURL,
			ProductURL:         v.ProductURL,
			VariantID:          v.VariantID,
			Title:              v.Title,
			SKU:                v.SKU,
			Size:               v.Size,
			Color:              v.Color,
			Live:               live,
			ProductDescription: v.ProductDescription,
			ItemPrice:          v.ItemPrice,
			Inventory:          v.Inventory,
			BlockedInventory:   v.BlockedInventory,
			Pendency:           v.Pendency,
		}
	}

	created, err := h.products.Create(r.Context(), sellerID, &product.Product{
		ParentTitle:          req.ParentTitle,
		Brand:                req.Brand,
		Variants:             variants,
		CommissionPercentage: req.CommissionPercentage,
		PaymentGatewayCharge: req.PaymentGatewayCharge,
		LogisticsCost:        req.LogisticsCost,
		AdditionalInfo:       req.AdditionalInfo,
	})
	if err != nil {
		var dup *service.DuplicateVariantError
		if errors.As(err, &dup) {
			if dup.InCatalog {
				respondJSON(w, http.StatusBadRequest, map[string]any{
					"success":            false,
					"error":              "Duplicate variantId found in database",
					"duplicateVariantId": dup.VariantID,
				})
				return
			}
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"success":             false,
				"error":               "Duplicate variantId found within request payload",
				"duplicateVariantIds": []string{dup.VariantID},
			})
			return
		}
		h.logger.Error("product creation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"product": created,
	})
}

func (h *Handlers) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InventoryList []service.InventoryUpdate `json:"inventoryList"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.InventoryList) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "FAILED",
			"message": "Invalid or missing inventoryList",
		})
		return
	}

	result, err := h.products.UpdateInventory(r.Context(), req.InventoryList)
	if err != nil {
		h.logger.Error("inventory update failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "FAILED",
			"message": "Internal Server Error",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetProductsCount(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.CurrentUserID(r.Context())

	if r.URL.Query().Get("publishedStatus") != "PUBLISHED" {
		respondMessage(w, http.StatusBadRequest, "Invalid publishedStatus")
		return
	}

	count, err := h.products.Count(r.Context(), sellerID)
	if err != nil {
		h.logger.Error("product count failed", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}
