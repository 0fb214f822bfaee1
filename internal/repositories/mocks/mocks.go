package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	"github.com/stretchr/testify/mock"
)

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Insert(ctx context.Context, name string, priceCents int64) (*models.Product, error) {
	args := m.Called(ctx, name, priceCents)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)

	var products []*models.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*models.Product)
	}

	return products, args.Error(1)
}

func (m *ProductRepository) UpdateByID(ctx context.Context, id int64, name string, priceCents int64) (*models.Product, error) {
	args := m.Called(ctx, id, name, priceCents)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}
