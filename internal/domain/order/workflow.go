package order

// Per-item error messages surfaced to API callers. These strings are part of
// the response contract and must not be reworded.
const (
	MsgItemNotFound      = "Order item not found"
	MsgCannotDispatch    = "Order item cannot be dispatched"
	MsgNotEnoughQuantity = "Not enough quantity to cancel"
	MsgInvalidStatus     = "Invalid status"
)

// BatchStatus classifies the outcome of a batch of per-item operations.
type BatchStatus string

const (
	BatchSuccess        BatchStatus = "SUCCESS"
	BatchFailed         BatchStatus = "FAILED"
	BatchPartialSuccess BatchStatus = "PARTIAL_SUCCESS"
)

// ClassifyBatch maps (requested, failed) counts onto the three-way batch
// status: no failures is SUCCESS, nothing but failures is FAILED, anything in
// between is PARTIAL_SUCCESS.
func ClassifyBatch(requested, failed int) BatchStatus {
	switch {
	case failed == 0:
		return BatchSuccess
	case failed == requested:
		return BatchFailed
	default:
		return BatchPartialSuccess
	}
}

// ItemOutcome is the per-item result entry returned by every batch operation.
// An empty ErrorMessage means the item was processed successfully.
type ItemOutcome struct {
	OrderItemID  string `json:"orderItemId"`
	ErrorMessage string `json:"errorMessage"`
}

// DispatchItems transitions the referenced items to DISPATCHED across the
// given orders, mutating them in place. Orders must already be the set of
// orders containing at least one referenced item. One outcome is produced per
// requested item, in request order: items found in no order fail with
// MsgItemNotFound, items not in CREATED status fail with MsgCannotDispatch.
func DispatchItems(orders []*Order, orderItemIDs []string) []ItemOutcome {
	outcomes := make([]ItemOutcome, 0, len(orderItemIDs))
	for _, id := range orderItemIDs {
		var item *Item
		for _, o := range orders {
			if item = o.FindItem(id); item != nil {
				break
			}
		}
		switch {
		case item == nil:
			outcomes = append(outcomes, ItemOutcome{OrderItemID: id, ErrorMessage: MsgItemNotFound})
		case item.Status != ItemCreated:
			outcomes = append(outcomes, ItemOutcome{OrderItemID: id, ErrorMessage: MsgCannotDispatch})
		default:
			item.Status = ItemDispatched
			outcomes = append(outcomes, ItemOutcome{OrderItemID: id})
		}
	}
	return outcomes
}

// CancelItemRequest is one seller-side cancellation entry. The item is matched
// by the exact (orderItemId, productId, variantId) triple.
type CancelItemRequest struct {
	OrderItemID string `json:"orderItemId"`
	ProductID   string `json:"productId"`
	VariantID   string `json:"variantId"`
	Quantity    int    `json:"quantity"`
}

// CancelItems applies seller cancellations to one order in place. Cancelling
// fewer units than present decrements the quantity; cancelling the full
// remaining quantity removes the item from the order. Only failed entries are
// returned; the caller derives the batch status from their count.
func CancelItems(o *Order, reqs []CancelItemRequest) []ItemOutcome {
	var failed []ItemOutcome
	for _, req := range reqs {
		item := matchItem(o, req)
		if item == nil {
			failed = append(failed, ItemOutcome{OrderItemID: req.OrderItemID, ErrorMessage: MsgItemNotFound})
			continue
		}
		if item.Quantity < req.Quantity {
			failed = append(failed, ItemOutcome{OrderItemID: req.OrderItemID, ErrorMessage: MsgNotEnoughQuantity})
			continue
		}
		item.Quantity -= req.Quantity
		if item.Quantity == 0 {
			removeItem(o, req.OrderItemID)
		}
	}
	return failed
}

func matchItem(o *Order, req CancelItemRequest) *Item {
	for i := range o.OrderItems {
		it := &o.OrderItems[i]
		if it.OrderItemID == req.OrderItemID && it.ProductID == req.ProductID && it.VariantID == req.VariantID {
			return it
		}
	}
	return nil
}

func removeItem(o *Order, orderItemID string) {
	items := o.OrderItems[:0]
	for _, it := range o.OrderItems {
		if it.OrderItemID != orderItemID {
			items = append(items, it)
		}
	}
	o.OrderItems = items
}

// StatusUpdateRequest asks for one item's status to be overwritten.
type StatusUpdateRequest struct {
	OrderItemID string     `json:"orderItemId"`
	Status      ItemStatus `json:"status"`
}

// UpdateItemStatuses overwrites line-item statuses in place. Only DELIVERED
// and RETURNED are accepted as targets; anything else fails the item with
// MsgInvalidStatus regardless of its current state. Once every item in the
// order is RETURNED the order's own status becomes RETURNED. Updated entries
// carry an empty error message.
func UpdateItemStatuses(o *Order, reqs []StatusUpdateRequest) (updated, failed []ItemOutcome) {
	for _, req := range reqs {
		item := o.FindItem(req.OrderItemID)
		if item == nil {
			failed = append(failed, ItemOutcome{OrderItemID: req.OrderItemID, ErrorMessage: MsgItemNotFound})
			continue
		}
		if req.Status != ItemDelivered && req.Status != ItemReturned {
			failed = append(failed, ItemOutcome{OrderItemID: req.OrderItemID, ErrorMessage: MsgInvalidStatus})
			continue
		}
		item.Status = req.Status
		updated = append(updated, ItemOutcome{OrderItemID: req.OrderItemID})
	}
	if o.AllItemsReturned() {
		o.OrderStatus = StatusReturned
	}
	return updated, failed
}

// CancelledSKU identifies a line item by its product/variant pair, the way the
// marketplace cancellation payload references items.
type CancelledSKU struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// ValidateMarketplaceCancellation checks that every requested pair exists
// among the order's line items. Unlike the other batch operations this is
// all-or-nothing: a single unknown pair fails the whole request before any
// remote call is made.
func ValidateMarketplaceCancellation(o *Order, skus []CancelledSKU) error {
	for _, sku := range skus {
		if !hasSKU(o, sku) {
			return ErrUnknownSKU
		}
	}
	return nil
}

// ApplyMarketplaceCancellation marks the order and every matching line item as
// CANCELLED. Callers invoke this only after the partner platform has confirmed
// the cancellation.
func ApplyMarketplaceCancellation(o *Order, skus []CancelledSKU) {
	o.OrderStatus = StatusCancelled
	for i := range o.OrderItems {
		it := &o.OrderItems[i]
		if skuRequested(skus, it) {
			it.Status = ItemCancelled
		}
	}
}

func hasSKU(o *Order, sku CancelledSKU) bool {
	for i := range o.OrderItems {
		if o.OrderItems[i].ProductID == sku.ProductID && o.OrderItems[i].VariantID == sku.VariantID {
			return true
		}
	}
	return false
}

func skuRequested(skus []CancelledSKU, it *Item) bool {
	for _, sku := range skus {
		if sku.ProductID == it.ProductID && sku.VariantID == it.VariantID {
			return true
		}
	}
	return false
}
