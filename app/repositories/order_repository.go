package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type UserOrderCount struct {
	Username string `json:"username"`
	Orders   int64  `gorm:"column:order_count" json:"orders"`
}

type UserUnits struct {
	Username string `json:"username"`
	Units    int64  `json:"units"`
}

// LineReport is one order line joined with its buyer and product.
type LineReport struct {
	OrderID     uint   `json:"order_id"`
	Username    string `json:"username"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// LineFilter narrows LinesReport. Zero fields match everything.
type LineFilter struct {
	OrderID   uint
	ProductID uint
	Username  string
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) query(ctx context.Context) *orm.Query {
	return orm.On(r.db).WithContext(ctx).
		Model(&models.Order{}).
		Preload("User").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_lines.id") }).
		Preload("Lines.Product")
}

// Create inserts the order row only; lines are added with CreateLines.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return wrap(r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error, "create order")
}

func (r *OrderRepository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return wrap(r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error, "create order lines")
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.query(ctx).Where("orders.id = ?", id).First(&o)
	return o, translate(err, "order", id)
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.query(ctx).Order("orders.id").Get(&orders)
	return orders, wrap(err, "list orders")
}

func (r *OrderRepository) ByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.query(ctx).Where("orders.user_id = ?", userID).Order("orders.id").Get(&orders)
	return orders, wrap(err, "orders by user")
}

func (r *OrderRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Order("id").Pluck("id", &ids).Error
	return ids, wrap(err, "order ids by user")
}

// SaveHeader updates date, total and status only.
func (r *OrderRepository) SaveHeader(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).
		Model(o).
		Select("date", "total", "status").
		Updates(models.Order{Date: o.Date, Total: o.Total, Status: o.Status}).Error
	return wrap(err, "update order")
}

func (r *OrderRepository) DeleteLinesOfOrders(ctx context.Context, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Delete(&models.OrderLine{}).Error
	return wrap(err, "delete order lines")
}

func (r *OrderRepository) DeleteLinesOfProduct(ctx context.Context, productID uint) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.OrderLine{}).Error
	return wrap(err, "delete product lines")
}

func (r *OrderRepository) Delete(ctx context.Context, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", orderIDs).Delete(&models.Order{}).Error
	return wrap(err, "delete orders")
}

func (r *OrderRepository) TotalSpent(ctx context.Context, userID uint) (float64, error) {
	var total struct{ Total float64 }
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total.Total, wrap(err, "total spent")
}

func (r *OrderRepository) CountPerUser(ctx context.Context) ([]UserOrderCount, error) {
	var out []UserOrderCount
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("users.username AS username, COUNT(orders.id) AS order_count").
		Joins("JOIN users ON users.id = orders.user_id").
		Group("users.username").
		Order("order_count DESC").
		Order("users.username").
		Scan(&out).Error
	return out, wrap(err, "orders per user")
}

func (r *OrderRepository) UnitsPerUser(ctx context.Context) ([]UserUnits, error) {
	var out []UserUnits
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("users.username AS username, SUM(order_lines.quantity) AS units").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Group("users.username").
		Order("units DESC").
		Order("users.username").
		Scan(&out).Error
	return out, wrap(err, "units per user")
}

func (r *OrderRepository) LinesReport(ctx context.Context, f LineFilter) ([]LineReport, error) {
	out := []LineReport{}
	q := r.db.WithContext(ctx).
		Table("order_lines").
		Select("orders.id AS order_id, users.username AS username, products.id AS product_id, products.name AS product_name, order_lines.quantity AS quantity").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN products ON products.id = order_lines.product_id")
	if f.OrderID != 0 {
		q = q.Where("orders.id = ?", f.OrderID)
	}
	if f.ProductID != 0 {
		q = q.Where("products.id = ?", f.ProductID)
	}
	if f.Username != "" {
		q = q.Where("users.username = ?", f.Username)
	}
	err := q.Order("orders.id").Order("order_lines.id").Scan(&out).Error
	return out, wrap(err, "order lines report")
}
