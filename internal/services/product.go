package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/cache"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/config"
	appErrors "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/errors"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/metrics"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	repository "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/repositories"
)

const defaultTTL = 60 * time.Second

// ProductService is the cache-aside orchestrator. Every cache interaction
// is failure-transparent: a fully-down cache degrades reads to direct store
// queries with bounded extra latency, never to an error.
type ProductService interface {
	GetProduct(ctx context.Context, id int64) (*models.ReadResult, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.UpdateResult, error)
	CacheAvailable() bool
}

type productService struct {
	repo   repository.ProductRepository
	cache  cache.Cache
	health *cache.Health
	ttl    time.Duration
}

func NewProductService(repo repository.ProductRepository, c cache.Cache, health *cache.Health, cfg *config.CacheConfig) ProductService {

	ttl := defaultTTL
	if cfg != nil && cfg.TTL > 0 {
		ttl = cfg.TTL
	}

	return &productService{repo: repo, cache: c, health: health, ttl: ttl}
}

// GetProduct is the read-through path: cache first, then the read route,
// then a best-effort repopulation of the cache.
func (s *productService) GetProduct(ctx context.Context, id int64) (*models.ReadResult, error) {

	key := cache.ProductKey(id)

	cached := &models.Product{}
	if s.cache.Get(ctx, key, cached) {
		metrics.CacheHits.Inc()

		return &models.ReadResult{Source: models.SourceCache, Product: cached}, nil
	}

	metrics.CacheMisses.Inc()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	// Failure here must not fail the request.
	s.cache.Set(ctx, key, product, s.ttl)

	return &models.ReadResult{Source: models.SourceDatabase, Product: product}, nil
}

// ListProducts always reads the store directly: a full-table scan is not a
// point lookup and stays out of the cache.
func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, nil
}

// CreateProduct has no cache interaction: the key did not previously exist,
// so there is nothing to invalidate.
func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product, err := s.repo.Insert(ctx, req.Name, *req.PriceCents)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

// UpdateProduct writes to the primary and then issues a best-effort cache
// invalidation. If the delete silently fails while the flag still reads
// reachable, a stale entry can be served until its TTL expires; that
// bounded window is an accepted trade-off, not a bug.
func (s *productService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.UpdateResult, error) {

	product, err := s.repo.UpdateByID(ctx, id, req.Name, *req.PriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.cache.Delete(ctx, cache.ProductKey(id))

	return &models.UpdateResult{Product: product, Invalidated: s.health.Up()}, nil
}

func (s *productService) CacheAvailable() bool {
	return s.health.Up()
}
