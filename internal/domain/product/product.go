package product

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound    = errors.New("product or variant not found")
	ErrDuplicateVariantID = errors.New("duplicate variantId")
)

// ItemPrice is the price card attached to a variant.
type ItemPrice struct {
	Currency         string  `json:"currency,omitempty"`
	ListingPrice     float64 `json:"listingPrice,omitempty"`
	MRP              float64 `json:"mrp,omitempty"`
	MSP              float64 `json:"msp,omitempty"`
	NetSellerPayable float64 `json:"netSellerPayable,omitempty"`
}

// Variant is one sellable configuration of a product with its own SKU and
// inventory counters. Variant ids are unique across the entire catalog, not
// just within one product.
type Variant struct {
	ImageURL           string     `json:"imageUrl,omitempty"`
	ProductURL         string     `json:"productUrl,omitempty"`
	VariantID          string     `json:"variantId"`
	Title              string     `json:"title"`
	SKU                string     `json:"sku"`
	Size               string     `json:"size,omitempty"`
	Color              string     `json:"color,omitempty"`
	Live               bool       `json:"live"`
	ProductDescription string     `json:"productDescription,omitempty"`
	ItemPrice          *ItemPrice `json:"itemPrice,omitempty"`
	Inventory          int        `json:"inventory"`
	BlockedInventory   int        `json:"blockedInventory,omitempty"`
	Pendency           int        `json:"pendency,omitempty"`
}

// Product is a parent listing owned by a seller, holding its variants as an
// embedded sequence.
type Product struct {
	ID                   string    `json:"id"`
	SellerID             string    `json:"sellerId"`
	ParentTitle          string    `json:"parentTitle"`
	Brand                string    `json:"brand"`
	Variants             []Variant `json:"variants"`
	CommissionPercentage float64   `json:"commissionPercentage,omitempty"`
	PaymentGatewayCharge float64   `json:"paymentGatewayCharge,omitempty"`
	LogisticsCost        float64   `json:"logisticsCost,omitempty"`
	AdditionalInfo       string    `json:"additionalInfo,omitempty"`
	Created              time.Time `json:"created"`
}

// FindVariant returns a pointer into the variant sequence, or nil.
func (p *Product) FindVariant(variantID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].VariantID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// LiveVariants returns only the variants flagged live, preserving order.
func (p *Product) LiveVariants() []Variant {
	out := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.Live {
			out = append(out, v)
		}
	}
	return out
}

// DuplicateVariantID reports the first variant id that appears more than once
// in the given sequence.
func DuplicateVariantID(variants []Variant) (string, bool) {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, dup := seen[v.VariantID]; dup {
			return v.VariantID, true
		}
		seen[v.VariantID] = struct{}{}
	}
	return "", false
}
