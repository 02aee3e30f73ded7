// Package shop implements the cache-aside core of the service: the product
// read, listing and write paths and the cart hash mirror, layered over the
// relational store and the cache client.
//
// # Caching Strategy
//
// Reads check the cache first and fall back to the relational store on a
// miss, then populate the cache best-effort. Writes go to the store and
// invalidate cached entries rather than updating them: a product write
// deletes its single-entity key and scan-deletes every listing key, because
// one create or update can affect any page, filter or sort combination.
//
// Carts are mirrored as one cache hash per owner, mapping the product id to
// a JSON line-item snapshot. The hash is an eagerly-populated read-through
// mirror of the owner's persistent rows and carries a thirty-day expiry
// refreshed on every write.
//
// # Failure Posture
//
// The cache is strictly a performance layer. Every cache failure is logged
// and recovered locally: reads fall back to the store, writes and
// invalidations are accepted as no-ops. Callers see exactly three error
// shapes: a *ValidationError before any store or cache access, ErrNotFound,
// or a wrapped store failure.
//
// # Consistency
//
// The cache write and the store write of one operation are sequential and
// independently fallible; there is no transaction or lock spanning both.
// A failure between them leaves a transient inconsistency that the next
// read-miss or invalidation repairs. Concurrent read-modify-write cart
// updates for the same line can race and lose an update; callers must
// tolerate brief staleness.
package shop
