package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/stDean/prod-ecom-backend/cache"
	"github.com/stDean/prod-ecom-backend/store"
)

// CartRepository is the persistent-store port the cart service consumes.
// *store.CartStore satisfies it.
type CartRepository interface {
	Insert(ctx context.Context, item *store.CartItem) error
	ListByOwner(ctx context.Context, userID *int64) ([]store.CartItem, error)
	UpdateQuantity(ctx context.Context, userID *int64, productID int64, quantity int, price float64) error
	Delete(ctx context.Context, userID *int64, productID int64) error
	DeleteByOwner(ctx context.Context, userID *int64) error
	ClaimGuestItem(ctx context.Context, productID, userID int64) error
}

// ItemSnapshot is the JSON line-item value stored in a cart hash field.
// Price is the line total: unit price times quantity on every write,
// including the initial add.
type ItemSnapshot struct {
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// unitPrice returns the per-item price, preferring the stored unit price
// and deriving it from the line total otherwise (snapshots written by older
// revisions carry no unit_price field).
func (s ItemSnapshot) unitPrice() float64 {
	if s.UnitPrice > 0 {
		return s.UnitPrice
	}
	if s.Quantity > 0 {
		return s.Price / float64(s.Quantity)
	}
	return s.Price
}

// Cart is the retrieve-items response: every snapshot plus the aggregate
// line-total sum and quantity count.
type Cart struct {
	Items     []ItemSnapshot `json:"items"`
	Total     float64        `json:"total"`
	ItemCount int            `json:"itemCount"`
}

// CartTotal is the aggregate-only response of Total.
type CartTotal struct {
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// QuantityResult reports the outcome of an increment or decrement. Removed
// is true when a decrement drove the quantity to zero and the line item was
// deleted outright; Quantity and LineTotal are only meaningful otherwise.
type QuantityResult struct {
	ProductID int64   `json:"productId"`
	Removed   bool    `json:"removed"`
	Quantity  int     `json:"quantity,omitempty"`
	LineTotal float64 `json:"lineTotal,omitempty"`
}

// MergeResult reports the outcome of absorbing the guest cart.
type MergeResult struct {
	Merged  int    `json:"merged"`
	Message string `json:"message,omitempty"`
}

// cartExpiryWindow is the lifetime of a cart: the hash TTL and the default
// expires_at of new line items.
const cartExpiryWindow = 30 * 24 * time.Hour

// CartService implements the cart read/write paths: a per-owner cache hash
// mirroring the owner's persistent line items, plus the guest merge.
type CartService struct {
	repo  CartRepository
	cache cache.Client
	ttl   cache.TTLConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewCartService wires a cart service. A nil logger falls back to a no-op
// logger.
func NewCartService(repo CartRepository, client cache.Client, ttl cache.TTLConfig, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{repo: repo, cache: client, ttl: ttl, log: log, now: time.Now}
}

// AddItem validates the payload, writes the snapshot into the owner's hash,
// refreshes the hash TTL and inserts the persistent row. A second add for
// the same (product, owner) pair fails on the store's unique constraint and
// that error passes through unchanged.
func (s *CartService) AddItem(ctx context.Context, owner Owner, in AddItemInput) (*ItemSnapshot, error) {
	if err := in.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	now := s.now().UTC()
	snap := ItemSnapshot{
		ProductID: in.ProductID,
		Quantity:  quantity,
		UnitPrice: in.Price,
		Price:     in.Price * float64(quantity),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(cartExpiryWindow),
	}

	key := owner.cartKey()
	s.writeSnapshot(ctx, key, snap)
	s.refreshCart(ctx, key)

	item := &store.CartItem{
		ProductID: snap.ProductID,
		UserID:    owner.UserID(),
		Quantity:  snap.Quantity,
		UnitPrice: snap.UnitPrice,
		Price:     snap.Price,
		ExpiresAt: snap.ExpiresAt,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Items returns the owner's cart. A non-empty hash answers without touching
// the persistent store; an empty or unreadable hash falls back to the store
// and repopulates the hash field by field.
func (s *CartService) Items(ctx context.Context, owner Owner) (*Cart, error) {
	key := owner.cartKey()

	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		s.log.Warn("cart hash read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
		fields = nil
	}
	if len(fields) > 0 {
		cart := &Cart{Items: make([]ItemSnapshot, 0, len(fields))}
		for field, raw := range fields {
			snap, ok := s.decodeSnapshot(key, field, raw)
			if !ok {
				continue
			}
			cart.Items = append(cart.Items, snap)
			cart.Total += snap.Price
			cart.ItemCount += snap.Quantity
		}
		return cart, nil
	}

	rows, err := s.repo.ListByOwner(ctx, owner.UserID())
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	cart := &Cart{Items: make([]ItemSnapshot, 0, len(rows))}
	for _, row := range rows {
		snap := snapshotFromRow(row)
		s.writeSnapshot(ctx, key, snap)
		cart.Items = append(cart.Items, snap)
		cart.Total += snap.Price
		cart.ItemCount += snap.Quantity
	}
	if len(rows) > 0 {
		s.refreshCart(ctx, key)
	}
	return cart, nil
}

// Increment raises the line item's quantity by one.
func (s *CartService) Increment(ctx context.Context, owner Owner, rawProductID string) (*QuantityResult, error) {
	return s.changeQuantity(ctx, owner, rawProductID, +1)
}

// Decrement lowers the line item's quantity by one. Reaching zero removes
// the item from both cache and store and reports a removal outcome instead
// of a quantity outcome.
func (s *CartService) Decrement(ctx context.Context, owner Owner, rawProductID string) (*QuantityResult, error) {
	return s.changeQuantity(ctx, owner, rawProductID, -1)
}

func (s *CartService) changeQuantity(ctx context.Context, owner Owner, rawProductID string, delta int) (*QuantityResult, error) {
	productID, err := parseProductID(rawProductID)
	if err != nil {
		return nil, err
	}

	key := owner.cartKey()
	field := strconv.FormatInt(productID, 10)

	raw, ok, err := s.cache.HGet(ctx, key, field)
	if err != nil {
		s.log.Warn("cart hash field read failed",
			zap.String("key", key), zap.String("field", field), zap.Error(err))
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("cart item %d: %w", productID, ErrNotFound)
	}
	snap, decoded := s.decodeSnapshot(key, field, raw)
	if !decoded {
		return nil, fmt.Errorf("cart item %d: %w", productID, ErrNotFound)
	}

	unit := snap.unitPrice()
	quantity := snap.Quantity + delta
	if quantity <= 0 {
		s.dropField(ctx, key, field)
		if err := s.repo.Delete(ctx, owner.UserID(), productID); err != nil {
			return nil, err
		}
		return &QuantityResult{ProductID: productID, Removed: true}, nil
	}

	snap.Quantity = quantity
	snap.UnitPrice = unit
	snap.Price = unit * float64(quantity)
	snap.UpdatedAt = s.now().UTC()

	s.writeSnapshot(ctx, key, snap)
	s.refreshCart(ctx, key)
	if err := s.repo.UpdateQuantity(ctx, owner.UserID(), productID, snap.Quantity, snap.Price); err != nil {
		return nil, err
	}
	return &QuantityResult{ProductID: productID, Quantity: snap.Quantity, LineTotal: snap.Price}, nil
}

// RemoveItem deletes the line item from both cache and store. Removing an
// absent item is not an error.
func (s *CartService) RemoveItem(ctx context.Context, owner Owner, rawProductID string) error {
	productID, err := parseProductID(rawProductID)
	if err != nil {
		return err
	}

	s.dropField(ctx, owner.cartKey(), strconv.FormatInt(productID, 10))
	return s.repo.Delete(ctx, owner.UserID(), productID)
}

// Clear deletes the owner's entire hash and all persistent rows in one shot
// each. Clearing an empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, owner Owner) error {
	key := owner.cartKey()
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("cart hash delete failed", zap.String("key", key), zap.Error(err))
	}
	return s.repo.DeleteByOwner(ctx, owner.UserID())
}

// Total returns the aggregate line-total sum and quantity count, preferring
// the hash and falling back to the persistent rows without repopulating the
// cache.
func (s *CartService) Total(ctx context.Context, owner Owner) (*CartTotal, error) {
	key := owner.cartKey()

	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		s.log.Warn("cart hash read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
		fields = nil
	}
	if len(fields) > 0 {
		total := &CartTotal{}
		for field, raw := range fields {
			snap, ok := s.decodeSnapshot(key, field, raw)
			if !ok {
				continue
			}
			total.Total += snap.Price
			total.ItemCount += snap.Quantity
		}
		return total, nil
	}

	rows, err := s.repo.ListByOwner(ctx, owner.UserID())
	if err != nil {
		return nil, fmt.Errorf("sum cart items: %w", err)
	}
	total := &CartTotal{}
	for _, row := range rows {
		total.Total += row.Price
		total.ItemCount += row.Quantity
	}
	return total, nil
}

// Merge absorbs the guest cart into the target owner's cart. Overlapping
// products sum their quantities with the line total recomputed from the
// target's unit price; products new to the target keep the guest snapshot
// and their ownerless persistent row is re-pointed to the target. The guest
// hash is deleted afterwards. An empty guest cart is a no-op, not an error.
func (s *CartService) Merge(ctx context.Context, target Owner) (*MergeResult, error) {
	if target.IsGuest() {
		return nil, invalidField("userId", "merge requires an authenticated owner")
	}

	guestKey := cache.CartKey(cache.GuestOwner)
	guestFields, err := s.cache.HGetAll(ctx, guestKey)
	if err != nil {
		s.log.Warn("guest cart read failed, nothing merged",
			zap.String("key", guestKey), zap.Error(err))
		guestFields = nil
	}
	if len(guestFields) == 0 {
		return &MergeResult{Message: "no items to merge"}, nil
	}

	targetKey := target.cartKey()
	targetFields, err := s.cache.HGetAll(ctx, targetKey)
	if err != nil {
		s.log.Warn("target cart read failed, treating as empty",
			zap.String("key", targetKey), zap.Error(err))
		targetFields = nil
	}

	now := s.now().UTC()
	merged := 0
	for field, raw := range guestFields {
		guestSnap, ok := s.decodeSnapshot(guestKey, field, raw)
		if !ok {
			continue
		}

		if existing, overlap := targetFields[field]; overlap {
			targetSnap, ok := s.decodeSnapshot(targetKey, field, existing)
			if !ok {
				continue
			}
			unit := targetSnap.unitPrice()
			targetSnap.Quantity += guestSnap.Quantity
			targetSnap.UnitPrice = unit
			targetSnap.Price = unit * float64(targetSnap.Quantity)
			targetSnap.UpdatedAt = now
			targetSnap.ExpiresAt = now.Add(cartExpiryWindow)

			s.writeSnapshot(ctx, targetKey, targetSnap)
			if err := s.repo.UpdateQuantity(ctx, target.UserID(), targetSnap.ProductID, targetSnap.Quantity, targetSnap.Price); err != nil {
				return nil, err
			}
		} else {
			s.writeSnapshot(ctx, targetKey, guestSnap)
			if err := s.repo.ClaimGuestItem(ctx, guestSnap.ProductID, *target.UserID()); err != nil {
				return nil, err
			}
		}
		merged++
	}

	s.refreshCart(ctx, targetKey)
	if err := s.cache.Delete(ctx, guestKey); err != nil {
		s.log.Warn("guest cart delete failed", zap.String("key", guestKey), zap.Error(err))
	}
	return &MergeResult{Merged: merged}, nil
}

// writeSnapshot stores one hash field best-effort; failures are logged and
// swallowed.
func (s *CartService) writeSnapshot(ctx context.Context, key string, snap ItemSnapshot) {
	field := strconv.FormatInt(snap.ProductID, 10)
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("cart snapshot encode failed",
			zap.String("key", key), zap.String("field", field), zap.Error(err))
		return
	}
	if err := s.cache.HSet(ctx, key, field, string(data)); err != nil {
		s.log.Warn("cart hash write failed",
			zap.String("key", key), zap.String("field", field), zap.Error(err))
	}
}

// refreshCart renews the hash TTL best-effort.
func (s *CartService) refreshCart(ctx context.Context, key string) {
	if err := s.cache.Expire(ctx, key, s.ttl.Cart); err != nil {
		s.log.Warn("cart TTL refresh failed", zap.String("key", key), zap.Error(err))
	}
}

// dropField removes one hash field best-effort.
func (s *CartService) dropField(ctx context.Context, key, field string) {
	if err := s.cache.HDel(ctx, key, field); err != nil {
		s.log.Warn("cart hash field delete failed",
			zap.String("key", key), zap.String("field", field), zap.Error(err))
	}
}

// decodeSnapshot parses one hash field value, logging and skipping corrupt
// entries.
func (s *CartService) decodeSnapshot(key, field, raw string) (ItemSnapshot, bool) {
	var snap ItemSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("cart snapshot is corrupt, skipping",
			zap.String("key", key), zap.String("field", field), zap.Error(err))
		return ItemSnapshot{}, false
	}
	return snap, true
}

// snapshotFromRow mirrors a persistent line item into its cache snapshot.
func snapshotFromRow(row store.CartItem) ItemSnapshot {
	return ItemSnapshot{
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		UnitPrice: row.UnitPrice,
		Price:     row.Price,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		ExpiresAt: row.ExpiresAt,
	}
}
