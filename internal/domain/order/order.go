package order

import (
	"errors"
	"time"
)

// Status is the overall lifecycle state of an order.
type Status string

const (
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusCreated             Status = "CREATED"
	StatusCancelled           Status = "CANCELLED"
	StatusReturned            Status = "RETURNED"
)

// ItemStatus is the lifecycle state of a single line item.
type ItemStatus string

const (
	ItemCreated    ItemStatus = "CREATED"
	ItemCancelled  ItemStatus = "CANCELLED"
	ItemDispatched ItemStatus = "DISPATCHED"
	ItemDelivered  ItemStatus = "DELIVERED"
	ItemReturned   ItemStatus = "RETURNED"
)

// PaymentType distinguishes cash-on-delivery from prepaid orders.
type PaymentType string

const (
	PaymentCOD     PaymentType = "COD"
	PaymentPrepaid PaymentType = "PREPAID"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrEmptyOrder       = errors.New("order must have at least one item")
	ErrNoMatchingItems  = errors.New("no matching order items found")
	ErrUnknownSKU       = errors.New("invalid productId or variantId in cancelledSkuCodes")
	ErrDuplicateItemID  = errors.New("duplicate order item id")
	ErrInvalidItemState = errors.New("invalid order item status")
)

// ValidStatus reports whether s is one of the accepted overall order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPendingVerification, StatusCreated, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// ItemPrice is the pricing snapshot captured on a line item at order time.
type ItemPrice struct {
	CashOnDeliveryCharges float64 `json:"cashOnDeliveryCharges,omitempty"`
	SellingPrice          float64 `json:"sellingPrice"`
	ShippingCharges       float64 `json:"shippingCharges,omitempty"`
	Discount              float64 `json:"discount,omitempty"`
	TotalPrice            float64 `json:"totalPrice"`
	TransferPrice         float64 `json:"transferPrice,omitempty"`
	Currency              string  `json:"currency,omitempty"`
}

// GiftWrap carries optional gift wrapping details for a line item.
type GiftWrap struct {
	GiftWrapMessage string  `json:"giftWrapMessage,omitempty"`
	GiftWrapCharges float64 `json:"giftWrapCharges,omitempty"`
}

// Item is one product/variant/quantity entry within an order. Items exist only
// embedded in their parent order and are mutated in place by the workflow.
type Item struct {
	OrderItemID        string     `json:"orderItemId"`
	Status             ItemStatus `json:"status"`
	ProductID          string     `json:"productId"`
	VariantID          string     `json:"variantId"`
	SKU                string     `json:"sku"`
	Title              string     `json:"title"`
	ShippingMethodCode string     `json:"shippingMethodCode,omitempty"`
	Price              ItemPrice  `json:"orderItemPrice"`
	Quantity           int        `json:"quantity"`
	GiftWrap           *GiftWrap  `json:"giftWrap,omitempty"`
	OnHold             bool       `json:"onHold"`
	PacketNumber       int        `json:"packetNumber,omitempty"`
	FacilityCode       string     `json:"facilityCode,omitempty"`
}

// Address is a shipping or billing address.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Pincode      string `json:"pincode"`
	State        string `json:"state"`
}

// Price aggregates order-level charge totals.
type Price struct {
	Currency                   string  `json:"currency,omitempty"`
	TotalCashOnDeliveryCharges float64 `json:"totalCashOnDeliveryCharges,omitempty"`
	TotalDiscount              float64 `json:"totalDiscount,omitempty"`
	TotalGiftCharges           float64 `json:"totalGiftCharges,omitempty"`
	TotalStoreCredit           float64 `json:"totalStoreCredit,omitempty"`
	TotalPrepaidAmount         float64 `json:"totalPrepaidAmount,omitempty"`
	TotalShippingCharges       float64 `json:"totalShippingCharges,omitempty"`
}

// Order is persisted and rewritten as a single document; there is no
// item-level locking.
type Order struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"userId"`
	DisplayOrderNumber string      `json:"displayOrderNumber"`
	OrderDate          time.Time   `json:"orderDate"`
	OrderStatus        Status      `json:"orderStatus"`
	SLA                time.Time   `json:"sla"`
	Priority           int         `json:"priority"`
	PaymentType        PaymentType `json:"paymentType,omitempty"`
	OrderPrice         *Price      `json:"orderPrice,omitempty"`
	OrderItems         []Item      `json:"orderItems"`
	TaxExempted        bool        `json:"taxExempted"`
	CFormProvided      bool        `json:"cFormProvided"`
	ThirdPartyShipping bool        `json:"thirdPartyShipping"`
	ShippingAddress    Address     `json:"shippingAddress"`
	BillingAddress     Address     `json:"billingAddress"`
	GSTIN              string      `json:"gstin,omitempty"`
	AdditionalInfo     string      `json:"additionalInfo,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// FindItem returns a pointer into the order's item sequence, or nil.
func (o *Order) FindItem(orderItemID string) *Item {
	for i := range o.OrderItems {
		if o.OrderItems[i].OrderItemID == orderItemID {
			return &o.OrderItems[i]
		}
	}
	return nil
}

// HasItem reports whether the order contains an item with the given id.
func (o *Order) HasItem(orderItemID string) bool {
	return o.FindItem(orderItemID) != nil
}

// AllItemsReturned reports whether every line item has been returned. An order
// with no items does not count as returned.
func (o *Order) AllItemsReturned() bool {
	if len(o.OrderItems) == 0 {
		return false
	}
	for i := range o.OrderItems {
		if o.OrderItems[i].Status != ItemReturned {
			return false
		}
	}
	return true
}
