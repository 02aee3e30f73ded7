// Package cache defines the cache client port and the key scheme used by the
// cache-aside layers in this service.
//
// # Overview
//
// This package exports three things:
//
//   - Client: the key-value operations the service expects from its cache
//     store (string entries, hash maps, pattern scan, per-key expiry)
//   - The key scheme: deterministic construction of single-product, product
//     listing and cart keys
//   - TTLConfig: the expiry policy applied to each class of cached entry
//
// The concrete Client implementation lives in internal/redisinfra. Consumers
// depend only on this package so the backend can be swapped (tests use an
// in-memory fake).
//
// # Key Scheme
//
// Single-product entries are keyed by identity:
//
//	product:42
//
// Listing entries are keyed by every effective pagination, sort and filter
// parameter, serialized as name:value pairs in a stable field order:
//
//	products:page:1:limit:10:sortBy:created_at:sortOrder:asc
//	products:page:2:limit:25:sortBy:price:sortOrder:desc:category:books
//
// Two requests with identical effective parameters therefore produce the
// same key, and any differing parameter produces a different one. The
// wildcard returned by ProductListPattern matches every listing key and no
// single-product key, which is what bulk invalidation relies on; this is why
// the listing prefix is "products" and the entity prefix "product".
//
// Cart hashes are keyed by owner, with the sentinel "guest" standing in for
// an anonymous session:
//
//	cart:7
//	cart:guest
//
// # Determinism
//
// Keys must be stable across processes, so the scheme never includes
// pointers, map iteration order or reflection-derived type names. Callers
// normalize parameters (defaults applied, limits clamped, sort columns
// whitelisted) before building a key; the key functions serialize exactly
// what they are given.
package cache
