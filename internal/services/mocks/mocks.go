package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	"github.com/stretchr/testify/mock"
)

type ProductService struct {
	mock.Mock
}

func (m *ProductService) GetProduct(ctx context.Context, id int64) (*models.ReadResult, error) {
	args := m.Called(ctx, id)

	var result *models.ReadResult
	if args.Get(0) != nil {
		result = args.Get(0).(*models.ReadResult)
	}

	return result, args.Error(1)
}

func (m *ProductService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)

	var products []*models.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*models.Product)
	}

	return products, args.Error(1)
}

func (m *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, req)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.UpdateResult, error) {
	args := m.Called(ctx, id, req)

	var result *models.UpdateResult
	if args.Get(0) != nil {
		result = args.Get(0).(*models.UpdateResult)
	}

	return result, args.Error(1)
}

func (m *ProductService) CacheAvailable() bool {
	args := m.Called()

	return args.Bool(0)
}
