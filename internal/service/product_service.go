package service

import (
	"context"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductService is the read-only catalog surface: filtered, sorted,
// paginated listings plus detail lookups.
type ProductService struct {
	products repository.ProductRepository
	log      *logrus.Logger
}

func NewProductService(products repository.ProductRepository, log *logrus.Logger) *ProductService {
	return &ProductService{products: products, log: log}
}

type ProductPage struct {
	Items  []entity.Product
	Total  int64
	Limit  int
	Offset int
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		return nil, ErrInvalidInput
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		return nil, ErrInvalidInput
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, ErrInvalidInput
	}
	switch filter.Sort {
	case "", repository.SortPriceAsc, repository.SortPriceDesc, repository.SortNewest:
	default:
		return nil, ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, s.internal(err, "list products")
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, s.internal(err, "count products")
	}
	return &ProductPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, s.internal(err, "find product")
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, s.internal(err, "list categories")
	}
	return categories, nil
}

func (s *ProductService) internal(err error, op string) error {
	return failInternal(s.log, err, op)
}
