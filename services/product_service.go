package services

import (
	"context"

	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetProduct(ctx context.Context, productID string) (*models.Product, *ServiceError)
}

type productServiceImpl struct {
	catalog repository.ProductRepository
	logger  *zap.Logger
}

func NewProductService(catalog repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productServiceImpl{catalog: catalog, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.catalog.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, StorageUnavailable("failed to list products", err)
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID string) (*models.Product, *ServiceError) {
	if !models.IsValidID(productID) {
		return nil, InvalidInput("invalid product id")
	}
	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, fromRepository(err, "product not found")
	}
	return p, nil
}
