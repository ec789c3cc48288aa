package migrations

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_roles_table", &CreateRolesTable{})
	migration.Register("20260101000001_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000002_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000003_create_orders_tables", &CreateOrdersTables{})
	migration.Register("20260101000004_add_products_name_lower_index", &AddProductsNameLowerIndex{})
}

// -------- 0000: roles --------

type CreateRolesTable struct{}

func (m *CreateRolesTable) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Role{}); err != nil {
		return err
	}
	roles := []models.Role{{Name: models.RoleUser}, {Name: models.RoleAdmin}}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}

func (m *CreateRolesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Role{})
}

// -------- 0001: users + user_roles --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return errors.Join(
		db.Migrator().DropTable("user_roles"),
		db.Migrator().DropTable(&models.User{}),
	)
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}

// -------- 0003: orders + order_lines --------

type CreateOrdersTables struct{}

func (m *CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderLine{})
}

func (m *CreateOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderLine{}, &models.Order{})
}

// -------- 0004: case-insensitive product names --------

// AddProductsNameLowerIndex enforces unique names ignoring case. SQL Server
// collations already compare case-insensitively, so the plain unique index
// suffices there.
type AddProductsNameLowerIndex struct{}

const productsNameLowerIndex = "idx_products_name_lower"

func (m *AddProductsNameLowerIndex) Up(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlserver":
		return nil
	case "mysql":
		return db.Exec("CREATE UNIQUE INDEX " + productsNameLowerIndex + " ON products ((LOWER(name)))").Error
	default:
		return db.Exec("CREATE UNIQUE INDEX " + productsNameLowerIndex + " ON products (LOWER(name))").Error
	}
}

func (m *AddProductsNameLowerIndex) Down(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlserver":
		return nil
	case "mysql":
		return db.Exec("DROP INDEX " + productsNameLowerIndex + " ON products").Error
	default:
		return db.Exec("DROP INDEX " + productsNameLowerIndex).Error
	}
}
