package seeders

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

func init() {
	Register("catalog", SeedCatalog)
}

// SeedCatalog inserts demo products into an empty catalogue.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Widget", Description: "A dependable general-purpose widget.", Price: 10, Stock: 5},
		{Name: "Gadget", Description: "Pocket gadget with two buttons.", Price: 24.5, Stock: 12},
		{Name: "Gizmo", Description: "Gizmo for the discerning tinkerer.", Price: 99.99, Stock: 3},
		{Name: "Sprocket", Description: "Steel sprocket, 32 teeth.", Price: 4.25, Stock: 40},
		{Name: "Doohickey", Description: "Nobody is sure what it does.", Price: 1.5, Stock: 100},
	}
	return db.Create(&products).Error
}
