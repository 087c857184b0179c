// Package storetest provides in-memory store fakes for unit tests. Reads hand
// back deep copies the way a real store materializes fresh documents, so a
// mutation is only visible after a Save.
package storetest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/domain/user"
)

// FakeOrderStore is an in-memory OrderStore recording Save calls.
type FakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	seq    []string // insertion order

	InsertCalls []string
	SaveCalls   []string
	FailSave    error // when set, Save returns this error
}

func NewFakeOrderStore() *FakeOrderStore {
	return &FakeOrderStore{orders: make(map[string]*order.Order)}
}

// Seed stores an order without recording a call.
func (f *FakeOrderStore) Seed(o *order.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = copyOrder(o)
	f.seq = append(f.seq, o.ID)
}

// Stored returns the persisted state of an order.
func (f *FakeOrderStore) Stored(id string) *order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyOrder(f.orders[id])
}

func (f *FakeOrderStore) Insert(ctx context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls = append(f.InsertCalls, o.ID)
	f.orders[o.ID] = copyOrder(o)
	f.seq = append(f.seq, o.ID)
	return nil
}

func (f *FakeOrderStore) Save(ctx context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveCalls = append(f.SaveCalls, o.ID)
	if f.FailSave != nil {
		return f.FailSave
	}
	if _, ok := f.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	f.orders[o.ID] = copyOrder(o)
	return nil
}

func (f *FakeOrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyOrder(f.orders[id]), nil
}

func (f *FakeOrderStore) FindByDisplayNumber(ctx context.Context, displayOrderNumber string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.seq {
		if o := f.orders[id]; o != nil && o.DisplayOrderNumber == displayOrderNumber {
			return copyOrder(o), nil
		}
	}
	return nil, nil
}

func (f *FakeOrderStore) FindByItemIDs(ctx context.Context, orderItemIDs []string) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*order.Order
	for _, id := range f.seq {
		o := f.orders[id]
		if o == nil {
			continue
		}
		for _, itemID := range orderItemIDs {
			if o.HasItem(itemID) {
				out = append(out, copyOrder(o))
				break
			}
		}
	}
	return out, nil
}

func (f *FakeOrderStore) ExistingItemID(ctx context.Context, orderItemIDs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.seq {
		o := f.orders[id]
		if o == nil {
			continue
		}
		for _, itemID := range orderItemIDs {
			if o.HasItem(itemID) {
				return itemID, nil
			}
		}
	}
	return "", nil
}

// FakeProductStore is an in-memory ProductStore.
type FakeProductStore struct {
	mu       sync.Mutex
	products map[string]*product.Product
	seq      []string

	InsertCalls []string
	SaveCalls   []string
	FailSave    error
}

func NewFakeProductStore() *FakeProductStore {
	return &FakeProductStore{products: make(map[string]*product.Product)}
}

func (f *FakeProductStore) Seed(p *product.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = copyProduct(p)
	f.seq = append(f.seq, p.ID)
}

func (f *FakeProductStore) Stored(id string) *product.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyProduct(f.products[id])
}

func (f *FakeProductStore) Insert(ctx context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls = append(f.InsertCalls, p.ID)
	f.products[p.ID] = copyProduct(p)
	f.seq = append(f.seq, p.ID)
	return nil
}

func (f *FakeProductStore) Save(ctx context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveCalls = append(f.SaveCalls, p.ID)
	if f.FailSave != nil {
		return f.FailSave
	}
	if _, ok := f.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	f.products[p.ID] = copyProduct(p)
	return nil
}

func (f *FakeProductStore) FindByIDWithVariant(ctx context.Context, productID, variantID string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[productID]
	if p == nil || p.FindVariant(variantID) == nil {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (f *FakeProductStore) ExistingVariantID(ctx context.Context, variantIDs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.seq {
		p := f.products[id]
		for _, vid := range variantIDs {
			if p.FindVariant(vid) != nil {
				return vid, nil
			}
		}
	}
	return "", nil
}

func (f *FakeProductStore) SearchLive(ctx context.Context, sellerID, sku string, page, size int) ([]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page < 1 {
		page = 1
	}

	var matched []*product.Product
	for _, id := range f.seq {
		p := f.products[id]
		if p.SellerID != sellerID {
			continue
		}
		live := p.LiveVariants()
		if len(live) == 0 {
			continue
		}
		if sku != "" && !hasSKU(live, sku) {
			continue
		}
		c := copyProduct(p)
		c.Variants = c.LiveVariants()
		matched = append(matched, c)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Created.After(matched[j].Created)
	})

	start := (page - 1) * size
	if start >= len(matched) {
		return nil, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (f *FakeProductStore) CountLiveVariants(ctx context.Context, sellerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.products {
		if p.SellerID != sellerID {
			continue
		}
		count += len(p.LiveVariants())
	}
	return count, nil
}

// FakeUserStore is an in-memory UserStore.
type FakeUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User

	InsertCalls []string
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{users: make(map[string]*user.User)}
}

func (f *FakeUserStore) Seed(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *u
	f.users[u.ID] = &c
}

func (f *FakeUserStore) Insert(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls = append(f.InsertCalls, u.Username)
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *FakeUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *FakeUserStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func hasSKU(variants []product.Variant, sku string) bool {
	for _, v := range variants {
		if v.SKU == sku {
			return true
		}
	}
	return false
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	return deepCopy(o, &order.Order{})
}

func copyProduct(p *product.Product) *product.Product {
	if p == nil {
		return nil
	}
	return deepCopy(p, &product.Product{})
}

func deepCopy[T any](src, dst *T) *T {
	b, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		panic(err)
	}
	return dst
}
