package shop

import (
	"context"
	"database/sql"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/stDean/prod-ecom-backend/store"
)

// fakeCache is an in-memory cache.Client with per-operation error injection
// and call recording.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
	calls   []string

	getErr     error
	setErr     error
	delErr     error
	scanErr    error
	hGetErr    error
	hSetErr    error
	hGetAllErr error
	hDelErr    error
	expireErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, op)
}

func (c *fakeCache) callCount(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call == op {
			n++
		}
	}
	return n
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.record("Get")
	if c.getErr != nil {
		return "", false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	return val, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.record("Set")
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.record("Delete")
	if c.delErr != nil {
		return c.delErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		delete(c.hashes, key)
		delete(c.ttls, key)
	}
	return nil
}

func (c *fakeCache) Scan(ctx context.Context, cursor uint64, pattern string, count int64) ([]string, uint64, error) {
	c.record("Scan")
	if c.scanErr != nil {
		return nil, 0, c.scanErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, 0, nil
}

func (c *fakeCache) HGet(ctx context.Context, key, field string) (string, bool, error) {
	c.record("HGet")
	if c.hGetErr != nil {
		return "", false, c.hGetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.hashes[key][field]
	return val, ok, nil
}

func (c *fakeCache) HSet(ctx context.Context, key, field, value string) error {
	c.record("HSet")
	if c.hSetErr != nil {
		return c.hSetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = make(map[string]string)
	}
	c.hashes[key][field] = value
	return nil
}

func (c *fakeCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	c.record("HGetAll")
	if c.hGetAllErr != nil {
		return nil, c.hGetAllErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.hashes[key]))
	for field, val := range c.hashes[key] {
		out[field] = val
	}
	return out, nil
}

func (c *fakeCache) HDel(ctx context.Context, key string, fields ...string) error {
	c.record("HDel")
	if c.hDelErr != nil {
		return c.hDelErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range fields {
		delete(c.hashes[key], field)
	}
	return nil
}

func (c *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.record("Expire")
	if c.expireErr != nil {
		return c.expireErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Close() error { return nil }

func (c *fakeCache) hasKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, inEntries := c.entries[key]
	_, inHashes := c.hashes[key]
	return inEntries || inHashes
}

// fakeProductRepo is an in-memory ProductRepository with call recording.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]store.Product
	nextID   int64
	calls    []string

	lastQuery   store.ListQuery
	countResult int

	listErr   error
	countErr  error
	insertErr error
	updateErr error
	deleteErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]store.Product), nextID: 1}
}

func (r *fakeProductRepo) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
}

func (r *fakeProductRepo) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call == op {
			n++
		}
	}
	return n
}

func (r *fakeProductRepo) add(p store.Product) store.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*store.Product, error) {
	r.record("GetByID")
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *fakeProductRepo) List(ctx context.Context, q store.ListQuery) ([]store.Product, error) {
	r.record("List")
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q
	var out []store.Product
	for _, p := range r.products {
		if q.Category == "" || p.Category == q.Category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Count(ctx context.Context, category string) (int, error) {
	r.record("Count")
	if r.countErr != nil {
		return 0, r.countErr
	}
	if r.countResult != 0 {
		return r.countResult, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.products {
		if category == "" || p.Category == category {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) Insert(ctx context.Context, p *store.Product) error {
	r.record("Insert")
	if r.insertErr != nil {
		return r.insertErr
	}
	*p = r.add(*p)
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, id int64, patch store.ProductPatch) (*store.Product, error) {
	r.record("Update")
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	r.products[id] = p
	return &p, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id int64) (int64, error) {
	r.record("Delete")
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return 0, nil
	}
	delete(r.products, id)
	return 1, nil
}

// fakeCartRepo is an in-memory CartRepository keyed by (owner, product).
type fakeCartRepo struct {
	mu     sync.Mutex
	items  map[string]store.CartItem
	nextID int64
	calls  []string

	insertErr error
	listErr   error
	updateErr error
	deleteErr error
	claimErr  error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[string]store.CartItem), nextID: 1}
}

func cartRowKey(userID *int64, productID int64) string {
	owner := "guest"
	if userID != nil {
		owner = strconv.FormatInt(*userID, 10)
	}
	return owner + "/" + strconv.FormatInt(productID, 10)
}

func (r *fakeCartRepo) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
}

func (r *fakeCartRepo) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call == op {
			n++
		}
	}
	return n
}

func (r *fakeCartRepo) add(item store.CartItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	r.items[cartRowKey(item.UserID, item.ProductID)] = item
}

func (r *fakeCartRepo) get(userID *int64, productID int64) (store.CartItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[cartRowKey(userID, productID)]
	return item, ok
}

func (r *fakeCartRepo) Insert(ctx context.Context, item *store.CartItem) error {
	r.record("Insert")
	if r.insertErr != nil {
		return r.insertErr
	}
	r.add(*item)
	return nil
}

func (r *fakeCartRepo) ListByOwner(ctx context.Context, userID *int64) ([]store.CartItem, error) {
	r.record("ListByOwner")
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.CartItem
	for _, item := range r.items {
		if sameOwner(item.UserID, userID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) UpdateQuantity(ctx context.Context, userID *int64, productID int64, quantity int, price float64) error {
	r.record("UpdateQuantity")
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cartRowKey(userID, productID)
	if item, ok := r.items[key]; ok {
		item.Quantity = quantity
		item.Price = price
		r.items[key] = item
	}
	return nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, userID *int64, productID int64) error {
	r.record("Delete")
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, cartRowKey(userID, productID))
	return nil
}

func (r *fakeCartRepo) DeleteByOwner(ctx context.Context, userID *int64) error {
	r.record("DeleteByOwner")
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, item := range r.items {
		if sameOwner(item.UserID, userID) {
			delete(r.items, key)
		}
	}
	return nil
}

func (r *fakeCartRepo) ClaimGuestItem(ctx context.Context, productID, userID int64) error {
	r.record("ClaimGuestItem")
	if r.claimErr != nil {
		return r.claimErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	guestKey := cartRowKey(nil, productID)
	if item, ok := r.items[guestKey]; ok {
		item.UserID = &userID
		delete(r.items, guestKey)
		r.items[cartRowKey(&userID, productID)] = item
	}
	return nil
}

func sameOwner(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
