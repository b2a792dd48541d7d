package dto

import (
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/service"
)

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      *string           `json:"description"`
	ShortDescription *string           `json:"shortDescription"`
	Price            float64           `json:"price"`
	DiscountPercent  *float64          `json:"discountPercent"`
	DiscountPrice    *float64          `json:"discountPrice"`
	ImageURL         *string           `json:"imageUrl"`
	Origin           *string           `json:"origin"`
	Story            *string           `json:"story"`
	StoryImageURL    *string           `json:"storyImageUrl"`
	WeightGrams      *int              `json:"weightGrams"`
	StockQuantity    int               `json:"stockQuantity"`
	SoldQuantity     int               `json:"soldQuantity"`
	IsFeatured       bool              `json:"isFeatured"`
	Category         *CategoryResponse `json:"category"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func NewProductResponse(p *entity.Product) ProductResponse {
	out := ProductResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		DiscountPercent:  p.DiscountPercent,
		DiscountPrice:    p.DiscountPrice,
		ImageURL:         p.ImageURL,
		Origin:           p.Origin,
		Story:            p.Story,
		StoryImageURL:    p.StoryImageURL,
		WeightGrams:      p.WeightGrams,
		StockQuantity:    p.StockQuantity,
		SoldQuantity:     p.SoldQuantity,
		IsFeatured:       p.IsFeatured,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Category != nil {
		out.Category = &CategoryResponse{ID: p.Category.ID.String(), Name: p.Category.Name}
	}
	return out
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

func NewProductListResponse(page *service.ProductPage) ProductListResponse {
	products := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		products = append(products, NewProductResponse(&page.Items[i]))
	}
	return ProductListResponse{
		Products:   products,
		Pagination: Pagination{Total: page.Total, Limit: page.Limit, Offset: page.Offset},
	}
}

func NewCategoryResponses(categories []entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{ID: c.ID.String(), Name: c.Name})
	}
	return out
}
