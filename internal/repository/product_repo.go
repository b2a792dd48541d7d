package repository

import (
	"context"
	"errors"

	"dacsanviet/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

type ProductFilter struct {
	Query       string
	MinPrice    *float64
	MaxPrice    *float64
	CategoryIDs []uuid.UUID
	Sort        string
	Limit       int
	Offset      int
}

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Categories(ctx context.Context) ([]entity.Category, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]entity.Product, error) {
	var products []entity.Product
	query := r.applyFilter(ctx, filter).Preload("Category")

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query = query.Limit(limit)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, filter).Count(&count).Error
	return count, err
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = true", id).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Categories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) applyFilter(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("is_active = true")

	if filter.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	return query
}
