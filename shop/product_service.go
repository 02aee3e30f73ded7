package shop

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stDean/prod-ecom-backend/cache"
	"github.com/stDean/prod-ecom-backend/store"
)

// scanPageSize is the per-page count hint handed to the cache scan when bulk
// invalidating listing keys.
const scanPageSize = 100

// ProductRepository is the persistent-store port the product service
// consumes. *store.ProductStore satisfies it.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*store.Product, error)
	List(ctx context.Context, q store.ListQuery) ([]store.Product, error)
	Count(ctx context.Context, category string) (int, error)
	Insert(ctx context.Context, product *store.Product) error
	Update(ctx context.Context, id int64, patch store.ProductPatch) (*store.Product, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// ProductListing is the listing response. Products, TotalCount and
// TotalPages are cacheable; HasNext and HasPrev are recomputed from the
// requested page on every call so pagination edges never go stale.
type ProductListing struct {
	Products   []store.Product `json:"products"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}

// listingEntry is the cached subset of a listing response.
type listingEntry struct {
	Products   []store.Product `json:"products"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
}

// ProductService implements the product read, listing and write paths with
// cache-aside semantics over the repository and the cache client.
type ProductService struct {
	repo  ProductRepository
	cache cache.Client
	ttl   cache.TTLConfig
	log   *zap.Logger
}

// NewProductService wires a product service. A nil logger falls back to a
// no-op logger.
func NewProductService(repo ProductRepository, client cache.Client, ttl cache.TTLConfig, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{repo: repo, cache: client, ttl: ttl, log: log}
}

// Get returns one product by its raw path-parameter id. The cache is
// consulted first; a miss or any cache failure falls back to the store, and
// a store hit is written back with the product TTL best-effort.
func (s *ProductService) Get(ctx context.Context, rawID string) (*store.Product, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}

	key := cache.ProductKey(id)
	if val, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("cache read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
	} else if ok {
		var product store.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
		s.log.Warn("cached product entry is corrupt, treating as miss",
			zap.String("key", key), zap.Error(err))
	}

	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	s.populate(ctx, key, product, s.ttl.Product)
	return product, nil
}

// List returns one page of products under the normalized parameters. The
// raw products/totalCount/totalPages tuple is cached per parameter
// combination; the pagination flags are recomputed on every call.
func (s *ProductService) List(ctx context.Context, params ListParams) (*ProductListing, error) {
	p := params.normalized()
	key := cache.ProductListKey(p.listKeyParams())

	if val, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("cache read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
	} else if ok {
		var entry listingEntry
		if err := json.Unmarshal([]byte(val), &entry); err == nil {
			return assembleListing(entry, p), nil
		}
		s.log.Warn("cached listing entry is corrupt, treating as miss",
			zap.String("key", key), zap.Error(err))
	}

	total, err := s.repo.Count(ctx, p.Category)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	totalPages := (total + p.Limit - 1) / p.Limit

	products, err := s.repo.List(ctx, store.ListQuery{
		Offset:     (p.Page - 1) * p.Limit,
		Limit:      p.Limit,
		SortColumn: p.SortBy,
		SortOrder:  p.SortOrder,
		Category:   p.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	entry := listingEntry{Products: products, TotalCount: total, TotalPages: totalPages}
	s.populate(ctx, key, entry, s.ttl.Listing)
	return assembleListing(entry, p), nil
}

// Create validates the payload, stores the product and invalidates every
// listing entry: a new product can surface on any page, filter or sort
// combination, so no narrower invalidation is safe.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*store.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	product := &store.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		InStock:     inStock,
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return product, nil
}

// Update applies a partial update and invalidates both the listing wildcard
// and the product's own entry. A patch with no recognized field, or a
// negative price, is rejected before any store access.
func (s *ProductService) Update(ctx context.Context, rawID string, patch store.ProductPatch) (*store.Product, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, invalidField("body", "no updatable field supplied")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, invalidField("price", "must be a non-negative number")
	}

	product, err := s.repo.Update(ctx, id, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	s.invalidateProduct(ctx, id)
	return product, nil
}

// Delete removes a product and invalidates the same entries as Update.
func (s *ProductService) Delete(ctx context.Context, rawID string) error {
	id, err := parseProductID(rawID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	s.invalidateListings(ctx)
	s.invalidateProduct(ctx, id)
	return nil
}

// populate writes a cache entry best-effort; failures are logged and
// swallowed so the caller's response never degrades.
func (s *ProductService) populate(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache entry encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateProduct deletes the single-entity entry for one id.
func (s *ProductService) invalidateProduct(ctx context.Context, id int64) {
	key := cache.ProductKey(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateListings scan-deletes every listing key, driving the cursor to
// exhaustion. The scan is not atomic relative to concurrent cache writes; a
// listing written while the scan runs may be missed and ages out on its own
// TTL.
func (s *ProductService) invalidateListings(ctx context.Context) {
	pattern := cache.ProductListPattern()
	var cursor uint64
	for {
		keys, next, err := s.cache.Scan(ctx, cursor, pattern, scanPageSize)
		if err != nil {
			s.log.Warn("listing invalidation scan failed",
				zap.String("pattern", pattern), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := s.cache.Delete(ctx, keys...); err != nil {
				s.log.Warn("listing invalidation delete failed",
					zap.Strings("keys", keys), zap.Error(err))
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

// assembleListing combines a (possibly cached) entry with the flags derived
// from the requested page.
func assembleListing(entry listingEntry, p ListParams) *ProductListing {
	return &ProductListing{
		Products:   entry.Products,
		TotalCount: entry.TotalCount,
		TotalPages: entry.TotalPages,
		Page:       p.Page,
		Limit:      p.Limit,
		HasNext:    p.Page < entry.TotalPages,
		HasPrev:    p.Page > 1,
	}
}
