package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/cache"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/config"
	appErrors "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/errors"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory stand-in honoring the advisory contract: when
// disabled it behaves like a fully-down backend (every get misses, every
// write is a no-op) without ever surfacing an error.
type fakeCache struct {
	mu       sync.Mutex
	store    map[string][]byte
	disabled bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disabled {
		return false
	}

	data, ok := f.store[key]
	if !ok {
		return false
	}

	return json.Unmarshal(data, dest) == nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disabled {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	f.store[key] = data
}

func (f *fakeCache) Delete(_ context.Context, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disabled {
		return
	}

	delete(f.store, key)
}

func (f *fakeCache) Ping(context.Context) bool { return !f.disabled }

func (f *fakeCache) Close() error { return nil }

func (f *fakeCache) contains(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.store[key]

	return ok
}

func setup(t *testing.T) (*mocks.ProductRepository, *fakeCache, *cache.Health, service.ProductService) {
	t.Helper()

	mockRepo := new(mocks.ProductRepository)
	fake := newFakeCache()
	health := cache.NewHealth()
	health.MarkUp()

	svc := service.NewProductService(mockRepo, fake, health, &config.CacheConfig{TTL: 60 * time.Second})

	return mockRepo, fake, health, svc
}

func notFoundErr(id int64) error {
	return fmt.Errorf("querying product %d: %w", id, sql.ErrNoRows)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()

	stored := &models.Product{ID: 1, Name: "Widget", PriceCents: 500, UpdatedAt: time.Now().UTC().Truncate(time.Second)}

	t.Run("Cold Miss Populates Cache", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Once()

		result, err := svc.GetProduct(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, models.SourceDatabase, result.Source)
		assert.Equal(t, stored, result.Product)
		assert.True(t, fake.contains(cache.ProductKey(1)), "a miss must repopulate the cache best-effort")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Second Read Is A Hit", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Once()

		first, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, models.SourceDatabase, first.Source)

		second, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.SourceCache, second.Source)
		assert.Equal(t, first.Product, second.Product, "hit and repopulating miss must carry identical data")

		// Once(): the second read never reached the store.
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("FindByID", mock.Anything, int64(99)).Return(nil, notFoundErr(99)).Once()

		result, err := svc.GetProduct(ctx, 99)

		require.Error(t, err)
		assert.Nil(t, result)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Store Error", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(nil, fmt.Errorf("querying product 1: connection reset")).Once()

		result, err := svc.GetProduct(ctx, 1)

		require.Error(t, err)
		assert.Nil(t, result)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Cache Transparency - Disabled Cache Yields Identical Data", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)
		fake.disabled = true

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Twice()

		first, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)

		second, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, models.SourceDatabase, first.Source)
		assert.Equal(t, models.SourceDatabase, second.Source, "with the cache fully down every read comes from the store")
		assert.Equal(t, first.Product, second.Product)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Concurrent Cold Reads Populate Equivalently", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Twice()

		var wg sync.WaitGroup

		results := make([]*models.ReadResult, 2)

		for i := 0; i < 2; i++ {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				res, err := svc.GetProduct(ctx, 1)
				assert.NoError(t, err)
				results[i] = res
			}(i)
		}

		wg.Wait()

		assert.Equal(t, results[0].Product, results[1].Product, "racing miss populations must carry equivalent data")
		assert.True(t, fake.contains(cache.ProductKey(1)))
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Reads The Store Directly", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)

		expected := []*models.Product{
			{ID: 1, Name: "Widget", PriceCents: 500},
			{ID: 2, Name: "Gadget", PriceCents: 1299},
		}

		mockRepo.On("FindAll", mock.Anything).Return(expected, nil).Once()

		products, err := svc.ListProducts(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, products)
		assert.Empty(t, fake.store, "list results are never cached")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Store Error", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("FindAll", mock.Anything).Return(nil, fmt.Errorf("querying products: timeout")).Once()

		products, err := svc.ListProducts(ctx)

		require.Error(t, err)
		assert.Nil(t, products)
		mockRepo.AssertExpectations(t)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	price := int64(500)

	t.Run("Success - No Cache Interaction", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)

		created := &models.Product{ID: 1, Name: "Widget", PriceCents: 500, UpdatedAt: time.Now()}

		mockRepo.On("Insert", mock.Anything, "Widget", int64(500)).Return(created, nil).Once()

		product, err := svc.CreateProduct(ctx, &models.CreateProductRequest{Name: "Widget", PriceCents: &price})

		require.NoError(t, err)
		assert.Equal(t, created, product)
		assert.Empty(t, fake.store, "create has nothing to invalidate and must not touch the cache")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Store Error", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("Insert", mock.Anything, "Widget", int64(500)).Return(nil, fmt.Errorf("inserting product: disk full")).Once()

		product, err := svc.CreateProduct(ctx, &models.CreateProductRequest{Name: "Widget", PriceCents: &price})

		require.Error(t, err)
		assert.Nil(t, product)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		mockRepo.AssertExpectations(t)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	price := int64(600)

	t.Run("Success Invalidates Cache Entry", func(t *testing.T) {
		mockRepo, fake, _, svc := setup(t)

		key := cache.ProductKey(1)
		fake.Set(ctx, key, &models.Product{ID: 1, Name: "Widget", PriceCents: 500}, time.Minute)

		updated := &models.Product{ID: 1, Name: "Widget v2", PriceCents: 600, UpdatedAt: time.Now()}

		mockRepo.On("UpdateByID", mock.Anything, int64(1), "Widget v2", int64(600)).Return(updated, nil).Once()

		result, err := svc.UpdateProduct(ctx, 1, &models.UpdateProductRequest{Name: "Widget v2", PriceCents: &price})

		require.NoError(t, err)
		assert.Equal(t, updated, result.Product)
		assert.True(t, result.Invalidated)
		assert.False(t, fake.contains(key), "the stale entry must be dropped so the next read misses")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Read After Write Serves Updated Row", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		stale := &models.Product{ID: 1, Name: "Widget", PriceCents: 500}

		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(stale, nil).Once()

		_, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)

		updated := &models.Product{ID: 1, Name: "Widget v2", PriceCents: 600, UpdatedAt: time.Now()}

		mockRepo.On("UpdateByID", mock.Anything, int64(1), "Widget v2", int64(600)).Return(updated, nil).Once()
		mockRepo.On("FindByID", mock.Anything, int64(1)).Return(updated, nil).Once()

		_, err = svc.UpdateProduct(ctx, 1, &models.UpdateProductRequest{Name: "Widget v2", PriceCents: &price})
		require.NoError(t, err)

		result, err := svc.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.SourceDatabase, result.Source, "after a successful invalidation the next read must miss")
		assert.Equal(t, "Widget v2", result.Product.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo, _, _, svc := setup(t)

		mockRepo.On("UpdateByID", mock.Anything, int64(99), "Ghost", int64(600)).
			Return(nil, fmt.Errorf("updating product 99: %w", sql.ErrNoRows)).Once()

		result, err := svc.UpdateProduct(ctx, 99, &models.UpdateProductRequest{Name: "Ghost", PriceCents: &price})

		require.Error(t, err)
		assert.Nil(t, result)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Cache Down - Write Succeeds, Invalidation Reported False", func(t *testing.T) {
		mockRepo, fake, health, svc := setup(t)
		fake.disabled = true
		health.MarkDown()

		updated := &models.Product{ID: 1, Name: "Widget v2", PriceCents: 600, UpdatedAt: time.Now()}

		mockRepo.On("UpdateByID", mock.Anything, int64(1), "Widget v2", int64(600)).Return(updated, nil).Once()

		result, err := svc.UpdateProduct(ctx, 1, &models.UpdateProductRequest{Name: "Widget v2", PriceCents: &price})

		require.NoError(t, err, "a down cache must never fail a write")
		assert.False(t, result.Invalidated, "invalidation is advisory while the cache is unreachable")
		mockRepo.AssertExpectations(t)
	})
}

func TestCacheAvailable(t *testing.T) {
	_, _, health, svc := setup(t)

	assert.True(t, svc.CacheAvailable())

	health.MarkDown()
	assert.False(t, svc.CacheAvailable())
}
