package cache

import (
	"strconv"
	"strings"
)

// KeySeparator delimits the segments of every cache key.
const KeySeparator = ":"

// Key prefixes. ProductListKeyPrefix must not be a prefix-sibling of
// ProductKeyPrefix followed by a separator: "products:*" may never match a
// "product:<id>" key, otherwise bulk listing invalidation would evict
// single-entity entries.
const (
	ProductKeyPrefix     = "product"
	ProductListKeyPrefix = "products"
	CartKeyPrefix        = "cart"
)

// GuestOwner is the sentinel cart owner for anonymous sessions. Exactly one
// guest cart hash exists at any time; it is the source of a merge.
const GuestOwner = "guest"

// ListKeyParams holds the effective (post-default, post-clamp) listing
// parameters a key is built from. Category is omitted from the key when
// empty.
type ListKeyParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Category  string
}

// ProductKey returns the cache key for a single product entry.
func ProductKey(id int64) string {
	return ProductKeyPrefix + KeySeparator + strconv.FormatInt(id, 10)
}

// ProductListKey returns the cache key for one listing parameter
// combination. Fields are serialized as name:value pairs in a fixed order so
// identical effective parameters always map to the same key.
func ProductListKey(p ListKeyParams) string {
	parts := []string{
		ProductListKeyPrefix,
		"page", strconv.Itoa(p.Page),
		"limit", strconv.Itoa(p.Limit),
		"sortBy", p.SortBy,
		"sortOrder", p.SortOrder,
	}
	if p.Category != "" {
		parts = append(parts, "category", p.Category)
	}
	return strings.Join(parts, KeySeparator)
}

// ProductListPattern returns the scan pattern matching every listing key
// regardless of its parameter combination.
func ProductListPattern() string {
	return ProductListKeyPrefix + KeySeparator + "*"
}

// CartKey returns the cache key of the owner's cart hash. An empty owner
// maps to the guest sentinel.
func CartKey(owner string) string {
	if owner == "" {
		owner = GuestOwner
	}
	return CartKeyPrefix + KeySeparator + owner
}
