package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is a purely advisory key/value store. No operation returns an
// error: a failed or timed-out call degrades to a miss (Get) or a no-op
// (Set, Delete) and is observable only through the Health flag.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Ping(ctx context.Context) bool
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const ProductKeyPrefix = "product"

func ProductKey(id int64) string {
	return Key(ProductKeyPrefix, strconv.FormatInt(id, 10))
}
