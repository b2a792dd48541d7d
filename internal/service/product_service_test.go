package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products   []entity.Product
	categories []entity.Category
}

func (r *fakeProductRepo) matches(p entity.Product, filter repository.ProductFilter) bool {
	if !p.IsActive {
		return false
	}
	if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
		return false
	}
	if filter.MinPrice != nil && p.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
		return false
	}
	if len(filter.CategoryIDs) > 0 {
		if p.CategoryID == nil {
			return false
		}
		found := false
		for _, id := range filter.CategoryIDs {
			if *p.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.products {
		if r.matches(p, filter) {
			out = append(out, p)
		}
	}
	switch filter.Sort {
	case repository.SortPriceAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case repository.SortPriceDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context, filter repository.ProductFilter) (int64, error) {
	var count int64
	for _, p := range r.products {
		if r.matches(p, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id && r.products[i].IsActive {
			return &r.products[i], nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Categories(_ context.Context) ([]entity.Category, error) {
	return r.categories, nil
}

func newProductService(repo *fakeProductRepo) *ProductService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewProductService(repo, logger)
}

func seedProducts() *fakeProductRepo {
	teaID := uuid.New()
	coffeeID := uuid.New()
	return &fakeProductRepo{
		categories: []entity.Category{
			{ID: teaID, Name: "Tea"},
			{ID: coffeeID, Name: "Coffee"},
		},
		products: []entity.Product{
			{ID: uuid.New(), Name: "Shan Tuyet Tea", Price: 150000, IsActive: true, CategoryID: &teaID},
			{ID: uuid.New(), Name: "Robusta Coffee", Price: 90000, IsActive: true, CategoryID: &coffeeID},
			{ID: uuid.New(), Name: "Arabica Coffee", Price: 220000, IsActive: true, CategoryID: &coffeeID},
			{ID: uuid.New(), Name: "Retired Blend", Price: 50000, IsActive: false, CategoryID: &coffeeID},
		},
	}
}

func TestProductListFilters(t *testing.T) {
	repo := seedProducts()
	svc := newProductService(repo)
	ctx := context.Background()

	page, err := svc.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	// Inactive products never surface.
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, defaultPageSize, page.Limit)

	page, err = svc.List(ctx, repository.ProductFilter{Query: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	min := 100000.0
	max := 200000.0
	page, err = svc.List(ctx, repository.ProductFilter{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shan Tuyet Tea", page.Items[0].Name)
}

func TestProductListSorting(t *testing.T) {
	repo := seedProducts()
	svc := newProductService(repo)

	page, err := svc.List(context.Background(), repository.ProductFilter{Sort: repository.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Robusta Coffee", page.Items[0].Name)
	assert.Equal(t, "Arabica Coffee", page.Items[2].Name)
}

func TestProductListRejectsBadFilters(t *testing.T) {
	svc := newProductService(seedProducts())
	ctx := context.Background()

	negative := -1.0
	_, err := svc.List(ctx, repository.ProductFilter{MinPrice: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	min := 200.0
	max := 100.0
	_, err = svc.List(ctx, repository.ProductFilter{MinPrice: &min, MaxPrice: &max})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(ctx, repository.ProductFilter{Sort: "alphabetical"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductListClampsPaging(t *testing.T) {
	svc := newProductService(seedProducts())

	page, err := svc.List(context.Background(), repository.ProductFilter{Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestProductGet(t *testing.T) {
	repo := seedProducts()
	svc := newProductService(repo)
	ctx := context.Background()

	product, err := svc.Get(ctx, repo.products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Shan Tuyet Tea", product.Name)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// Inactive products read as missing.
	_, err = svc.Get(ctx, repo.products[3].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCategories(t *testing.T) {
	svc := newProductService(seedProducts())

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}
