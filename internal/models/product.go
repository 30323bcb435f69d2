package models

import "gorm.io/gorm"

// Product represents a product in the store catalog.
type Product struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string   `json:"name" validate:"required,min=3,max=100"`
	Description   string   `json:"description" validate:"omitempty,max=500"`
	Category      string   `json:"category" validate:"omitempty,max=100"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	Images        []string `json:"images" gorm:"serializer:json"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
