package models

import "time"

// Dessert is a sellable catalogue item. Prices are whole currency units.
type Dessert struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" bson:"name" gorm:"size:100;not null"`
	Description string    `json:"description" bson:"description" gorm:"type:text;not null"`
	Price       int       `json:"price" bson:"price" gorm:"not null"`
	ImageURL    string    `json:"image_url" bson:"image_url" gorm:"column:image_url;size:255;not null"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type CreateDessertRequest struct {
	Name        string `json:"name" binding:"required,nonblank,max=100"`
	Description string `json:"description" binding:"required,nonblank"`
	Price       *int   `json:"price" binding:"required,min=0"`
	ImageURL    string `json:"image_url" binding:"required,nonblank,max=255"`
}
