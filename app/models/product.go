package models

import "time"

// Product represents a product in the catalogue. Names are unique ignoring case.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	ImagePath   string    `gorm:"size:512" json:"image_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
