package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The deadline race must detach the losing call: its eventual completion
// may not mutate the health flag after the timeout already marked it down.
func TestAttemptTimeoutDetachesLoser(t *testing.T) {
	health := NewHealth()
	health.MarkUp()

	c := &resilientCache{health: health, opTimeout: 20 * time.Millisecond}

	release := make(chan struct{})

	start := time.Now()
	c.attempt(context.Background(), "set", "product:1", func(ctx context.Context) error {
		<-release
		return nil
	})

	assert.False(t, health.Up(), "losing the race must mark the cache unreachable")
	assert.Less(t, time.Since(start), 500*time.Millisecond, "attempt must return at the deadline, not wait for the call")

	// Let the abandoned call complete successfully, then make sure it did
	// not resurrect the flag.
	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, health.Up(), "a slow success arriving after timeout must not flip the flag back")
}

func TestAttemptSuccessAndFailure(t *testing.T) {
	health := NewHealth()

	c := &resilientCache{health: health, opTimeout: time.Second}

	c.attempt(context.Background(), "set", "product:1", func(ctx context.Context) error {
		return nil
	})
	assert.True(t, health.Up(), "a successful operation corrects a stale false")

	c.attempt(context.Background(), "set", "product:1", func(ctx context.Context) error {
		return errors.New("boom")
	})
	assert.False(t, health.Up())
}

func TestHealthConcurrentAccess(t *testing.T) {
	health := NewHealth()

	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()

			for j := 0; j < 1000; j++ {
				if i%2 == 0 {
					health.MarkUp()
				} else {
					health.MarkDown()
				}
				_ = health.Up()
			}
		}(i)
	}

	for i := 0; i < 8; i++ {
		<-done
	}
}
