package cache

import (
	"sync/atomic"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/metrics"
)

// Health is the process-wide advisory reachability flag for the cache
// backend. It is last-write-wins: a stale value costs at most one wasted
// backend attempt and is corrected by the next operation or connect event.
// It must never be used to fail a request.
type Health struct {
	up atomic.Bool
}

func NewHealth() *Health {
	return &Health{}
}

func (h *Health) MarkUp() {
	h.up.Store(true)
	metrics.CacheUp.Set(1)
}

func (h *Health) MarkDown() {
	h.up.Store(false)
	metrics.CacheUp.Set(0)
}

func (h *Health) Up() bool {
	return h.up.Load()
}
