package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:varchar(100);uniqueIndex;not null"`

	CreatedAt time.Time
}

type Product struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"type:varchar(255);not null;index"`
	Description      *string   `gorm:"type:text"`
	ShortDescription *string   `gorm:"type:varchar(500)"`

	Price           float64  `gorm:"type:numeric(12,2);not null"`
	DiscountPercent *float64 `gorm:"type:numeric(5,2)"`
	DiscountPrice   *float64 `gorm:"type:numeric(12,2)"`

	ImageURL      *string `gorm:"type:text"`
	Origin        *string `gorm:"type:varchar(100)"`
	Story         *string `gorm:"type:text"`
	StoryImageURL *string `gorm:"type:text"`
	WeightGrams   *int

	StockQuantity int `gorm:"default:0"`
	SoldQuantity  int `gorm:"default:0"`

	IsActive   bool `gorm:"default:true"`
	IsFeatured bool `gorm:"default:false"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	Category   *Category  `gorm:"constraint:OnDelete:SET NULL"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
