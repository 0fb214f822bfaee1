package models

import "time"

const (
	SourceCache    = "cache"
	SourceDatabase = "database"

	CacheStatusAvailable   = "available"
	CacheStatusUnavailable = "unavailable"
)

type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PriceCents is a pointer so a zero price is distinguishable from a missing
// field during validation.
type CreateProductRequest struct {
	Name       string `json:"name" validate:"required"`
	PriceCents *int64 `json:"price_cents" validate:"required,gte=0"`
}

type UpdateProductRequest struct {
	Name       string `json:"name" validate:"required"`
	PriceCents *int64 `json:"price_cents" validate:"required,gte=0"`
}

// ReadResult is a product read tagged with where the payload came from.
type ReadResult struct {
	Source  string   `json:"source"`
	Product *Product `json:"data"`
}

// UpdateResult reports whether the cache entry for the row was invalidated
// as part of the write. Invalidated is false when the cache was already
// believed unreachable, in which case the entry expires by TTL instead.
type UpdateResult struct {
	Product     *Product `json:"data"`
	Invalidated bool     `json:"cache_invalidated"`
}

type ListProductsResponse struct {
	Data        []*Product `json:"data"`
	Count       int        `json:"count"`
	CacheStatus string     `json:"cache_status"`
}

type CreateProductResponse struct {
	Product
	CacheStatus string `json:"cache_status"`
}

type UpdateProductResponse struct {
	Product
	CacheInvalidated bool   `json:"cache_invalidated"`
	CacheStatus      string `json:"cache_status"`
}

func CacheStatus(available bool) string {
	if available {
		return CacheStatusAvailable
	}

	return CacheStatusUnavailable
}
