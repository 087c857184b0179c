package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(items ...Item) *Order {
	return &Order{
		ID:          "order-1",
		UserID:      "seller-1",
		OrderStatus: StatusCreated,
		OrderItems:  items,
	}
}

func testItem(id string, status ItemStatus, qty int) Item {
	return Item{
		OrderItemID: id,
		Status:      status,
		ProductID:   "prod-" + id,
		VariantID:   "var-" + id,
		SKU:         "sku-" + id,
		Title:       "item " + id,
		Quantity:    qty,
	}
}

// ============================================
// Dispatch
// ============================================

func TestDispatchItems_CreatedItemTransitions(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1))

	outcomes := DispatchItems([]*Order{o}, []string{"I1"})

	require.Len(t, outcomes, 1)
	assert.Equal(t, "I1", outcomes[0].OrderItemID)
	assert.Empty(t, outcomes[0].ErrorMessage)
	assert.Equal(t, ItemDispatched, o.OrderItems[0].Status)
}

func TestDispatchItems_UnknownItem(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1))

	outcomes := DispatchItems([]*Order{o}, []string{"missing"})

	require.Len(t, outcomes, 1)
	assert.Equal(t, MsgItemNotFound, outcomes[0].ErrorMessage)
	assert.Equal(t, ItemCreated, o.OrderItems[0].Status)
}

func TestDispatchItems_NotCreated(t *testing.T) {
	for _, status := range []ItemStatus{ItemCancelled, ItemDispatched, ItemDelivered, ItemReturned} {
		o := testOrder(testItem("I1", status, 1))

		outcomes := DispatchItems([]*Order{o}, []string{"I1"})

		require.Len(t, outcomes, 1)
		assert.Equal(t, MsgCannotDispatch, outcomes[0].ErrorMessage, "status %s", status)
		assert.Equal(t, status, o.OrderItems[0].Status)
	}
}

func TestDispatchItems_Idempotence(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1))

	first := DispatchItems([]*Order{o}, []string{"I1"})
	require.Empty(t, first[0].ErrorMessage)

	// Resubmitting an already-dispatched item fails the same way every time,
	// never a silent no-op success.
	second := DispatchItems([]*Order{o}, []string{"I1"})
	assert.Equal(t, MsgCannotDispatch, second[0].ErrorMessage)
	third := DispatchItems([]*Order{o}, []string{"I1"})
	assert.Equal(t, MsgCannotDispatch, third[0].ErrorMessage)
}

func TestDispatchItems_SpansOrders(t *testing.T) {
	o1 := testOrder(testItem("I1", ItemCreated, 1))
	o2 := testOrder(testItem("I2", ItemCreated, 1))
	o2.ID = "order-2"

	outcomes := DispatchItems([]*Order{o1, o2}, []string{"I1", "I2", "I3"})

	require.Len(t, outcomes, 3)
	assert.Empty(t, outcomes[0].ErrorMessage)
	assert.Empty(t, outcomes[1].ErrorMessage)
	assert.Equal(t, MsgItemNotFound, outcomes[2].ErrorMessage)
	assert.Equal(t, ItemDispatched, o1.OrderItems[0].Status)
	assert.Equal(t, ItemDispatched, o2.OrderItems[0].Status)
}

func TestDispatchItems_OutcomesFollowRequestOrder(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1), testItem("I2", ItemCreated, 1))

	outcomes := DispatchItems([]*Order{o}, []string{"I2", "I1"})

	require.Len(t, outcomes, 2)
	assert.Equal(t, "I2", outcomes[0].OrderItemID)
	assert.Equal(t, "I1", outcomes[1].OrderItemID)
}

// ============================================
// Cancel by seller
// ============================================

func cancelReq(item Item, qty int) CancelItemRequest {
	return CancelItemRequest{
		OrderItemID: item.OrderItemID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		Quantity:    qty,
	}
}

func TestCancelItems_PartialQuantityDecrements(t *testing.T) {
	item := testItem("I1", ItemCreated, 3)
	o := testOrder(item)

	failed := CancelItems(o, []CancelItemRequest{cancelReq(item, 1)})

	assert.Empty(t, failed)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, 2, o.OrderItems[0].Quantity)
}

func TestCancelItems_FullQuantityRemovesItem(t *testing.T) {
	item := testItem("I1", ItemCreated, 2)
	keep := testItem("I2", ItemCreated, 1)
	o := testOrder(item, keep)

	failed := CancelItems(o, []CancelItemRequest{cancelReq(item, 2)})

	assert.Empty(t, failed)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, "I2", o.OrderItems[0].OrderItemID)
}

func TestCancelItems_NotEnoughQuantity(t *testing.T) {
	item := testItem("I1", ItemCreated, 2)
	o := testOrder(item)

	failed := CancelItems(o, []CancelItemRequest{cancelReq(item, 5)})

	require.Len(t, failed, 1)
	assert.Equal(t, MsgNotEnoughQuantity, failed[0].ErrorMessage)
	// The item is left untouched.
	assert.Equal(t, 2, o.OrderItems[0].Quantity)
}

func TestCancelItems_TripleMustMatchExactly(t *testing.T) {
	item := testItem("I1", ItemCreated, 2)
	o := testOrder(item)

	req := cancelReq(item, 1)
	req.VariantID = "some-other-variant"
	failed := CancelItems(o, []CancelItemRequest{req})

	require.Len(t, failed, 1)
	assert.Equal(t, MsgItemNotFound, failed[0].ErrorMessage)
	assert.Equal(t, 2, o.OrderItems[0].Quantity)
}

func TestCancelItems_EndToEndExample(t *testing.T) {
	// Order O has items [{id:"I1", status:CREATED, qty:3}].
	item := testItem("I1", ItemCreated, 3)
	o := testOrder(item)

	failed := CancelItems(o, []CancelItemRequest{cancelReq(item, 1)})
	assert.Empty(t, failed)
	assert.Equal(t, BatchSuccess, ClassifyBatch(1, len(failed)))
	assert.Equal(t, 2, o.OrderItems[0].Quantity)

	failed = CancelItems(o, []CancelItemRequest{cancelReq(item, 5)})
	require.Len(t, failed, 1)
	assert.Equal(t, "I1", failed[0].OrderItemID)
	assert.Equal(t, MsgNotEnoughQuantity, failed[0].ErrorMessage)
	assert.Equal(t, BatchFailed, ClassifyBatch(1, len(failed)))
}

func TestCancelItems_MixedOutcome(t *testing.T) {
	a := testItem("I1", ItemCreated, 3)
	b := testItem("I2", ItemCreated, 1)
	o := testOrder(a, b)

	reqs := []CancelItemRequest{cancelReq(a, 1), cancelReq(b, 9)}
	failed := CancelItems(o, reqs)

	require.Len(t, failed, 1)
	assert.Equal(t, "I2", failed[0].OrderItemID)
	assert.Equal(t, BatchPartialSuccess, ClassifyBatch(len(reqs), len(failed)))
	assert.Equal(t, 2, o.OrderItems[0].Quantity)
}

// ============================================
// Update item status
// ============================================

func TestUpdateItemStatuses_DeliveredAndReturned(t *testing.T) {
	o := testOrder(testItem("I1", ItemDispatched, 1), testItem("I2", ItemDispatched, 1))

	updated, failed := UpdateItemStatuses(o, []StatusUpdateRequest{
		{OrderItemID: "I1", Status: ItemDelivered},
		{OrderItemID: "I2", Status: ItemReturned},
	})

	assert.Len(t, updated, 2)
	assert.Empty(t, failed)
	assert.Equal(t, ItemDelivered, o.OrderItems[0].Status)
	assert.Equal(t, ItemReturned, o.OrderItems[1].Status)
	assert.Equal(t, StatusCreated, o.OrderStatus)
}

func TestUpdateItemStatuses_InvalidTargetAlwaysRejected(t *testing.T) {
	for _, target := range []ItemStatus{ItemCreated, ItemCancelled, ItemDispatched, ItemStatus("SHIPPED")} {
		o := testOrder(testItem("I1", ItemDispatched, 1))

		updated, failed := UpdateItemStatuses(o, []StatusUpdateRequest{{OrderItemID: "I1", Status: target}})

		assert.Empty(t, updated)
		require.Len(t, failed, 1, "target %s", target)
		assert.Equal(t, MsgInvalidStatus, failed[0].ErrorMessage)
		assert.Equal(t, ItemDispatched, o.OrderItems[0].Status)
	}
}

func TestUpdateItemStatuses_UnknownItem(t *testing.T) {
	o := testOrder(testItem("I1", ItemDispatched, 1))

	updated, failed := UpdateItemStatuses(o, []StatusUpdateRequest{{OrderItemID: "nope", Status: ItemDelivered}})

	assert.Empty(t, updated)
	require.Len(t, failed, 1)
	assert.Equal(t, MsgItemNotFound, failed[0].ErrorMessage)
}

func TestUpdateItemStatuses_AllReturnedFlipsOrderStatus(t *testing.T) {
	o := testOrder(testItem("I1", ItemReturned, 1), testItem("I2", ItemDispatched, 1))

	UpdateItemStatuses(o, []StatusUpdateRequest{{OrderItemID: "I2", Status: ItemReturned}})

	assert.Equal(t, StatusReturned, o.OrderStatus)
}

func TestUpdateItemStatuses_PartiallyReturnedKeepsOrderStatus(t *testing.T) {
	o := testOrder(testItem("I1", ItemDispatched, 1), testItem("I2", ItemDispatched, 1))

	UpdateItemStatuses(o, []StatusUpdateRequest{{OrderItemID: "I2", Status: ItemReturned}})

	assert.Equal(t, StatusCreated, o.OrderStatus)
}

// ============================================
// Marketplace cancellation
// ============================================

func TestValidateMarketplaceCancellation_AllPairsKnown(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1), testItem("I2", ItemCreated, 1))

	err := ValidateMarketplaceCancellation(o, []CancelledSKU{
		{ProductID: "prod-I1", VariantID: "var-I1"},
		{ProductID: "prod-I2", VariantID: "var-I2"},
	})

	assert.NoError(t, err)
}

func TestValidateMarketplaceCancellation_AllOrNothing(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1))

	err := ValidateMarketplaceCancellation(o, []CancelledSKU{
		{ProductID: "prod-I1", VariantID: "var-I1"},
		{ProductID: "prod-I1", VariantID: "unknown"},
	})

	assert.ErrorIs(t, err, ErrUnknownSKU)
}

func TestApplyMarketplaceCancellation(t *testing.T) {
	o := testOrder(testItem("I1", ItemCreated, 1), testItem("I2", ItemDispatched, 1))

	ApplyMarketplaceCancellation(o, []CancelledSKU{{ProductID: "prod-I1", VariantID: "var-I1"}})

	assert.Equal(t, StatusCancelled, o.OrderStatus)
	assert.Equal(t, ItemCancelled, o.OrderItems[0].Status)
	// Items outside the cancelled set keep their status.
	assert.Equal(t, ItemDispatched, o.OrderItems[1].Status)
}

// ============================================
// Helpers
// ============================================

func TestClassifyBatch(t *testing.T) {
	assert.Equal(t, BatchSuccess, ClassifyBatch(3, 0))
	assert.Equal(t, BatchFailed, ClassifyBatch(3, 3))
	assert.Equal(t, BatchPartialSuccess, ClassifyBatch(3, 1))
}

func TestAllItemsReturned_EmptyOrder(t *testing.T) {
	o := testOrder()
	assert.False(t, o.AllItemsReturned())
}
