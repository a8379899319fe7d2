package service

import (
	"context"

	"github.com/sarmatovd/shop-services/services/product/internal/domain"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	return s.productRepo.Create(ctx, product)
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return s.productRepo.GetByIDs(ctx, ids)
}

func (s *productService) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	return s.productRepo.List(ctx, limit, offset, search)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.DeleteByID(ctx, id)
}
