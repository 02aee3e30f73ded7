package cache

import "time"

// TTLConfig holds the expiry applied to each class of cached entry.
type TTLConfig struct {
	// Product is the TTL of single-product entries.
	Product time.Duration

	// Listing is the TTL of listing entries. Listings go stale faster than
	// single entities because any write to any product affects them, so the
	// window is kept short.
	Listing time.Duration

	// Cart is the TTL of a cart hash as a whole. It is refreshed on every
	// cart write and on read-repopulation.
	Cart time.Duration
}

// DefaultTTLConfig returns the TTL policy the service ships with: one hour
// for product entries, five minutes for listings, thirty days for carts.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Product: time.Hour,
		Listing: 5 * time.Minute,
		Cart:    30 * 24 * time.Hour,
	}
}

// Validate checks that every TTL is positive.
func (c TTLConfig) Validate() error {
	if c.Product <= 0 {
		return &ConfigError{Field: "Product", Message: "must be greater than 0"}
	}
	if c.Listing <= 0 {
		return &ConfigError{Field: "Listing", Message: "must be greater than 0"}
	}
	if c.Cart <= 0 {
		return &ConfigError{Field: "Cart", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
