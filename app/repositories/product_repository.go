package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// BestSeller is a product with the units sold across all order lines.
type BestSeller struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) query(ctx context.Context) *orm.Query {
	return orm.On(r.db).WithContext(ctx).Model(&models.Product{})
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Where("id = ?", id).First(&p)
	return p, translate(err, "product", id)
}

// FindForUpdate loads ids ordered by id, locking the rows where the dialect
// supports SELECT ... FOR UPDATE.
func (r *ProductRepository) FindForUpdate(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	return products, wrap(err, "lock products")
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).Where("id IN ?", ids).Order("id").Get(&products)
	return products, wrap(err, "find products")
}

// NameTaken compares names ignoring case.
func (r *ProductRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, wrap(err, "product name taken")
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return unique(r.db.WithContext(ctx).Create(p).Error, "create product", "name", p.Name)
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return unique(r.db.WithContext(ctx).Save(p).Error, "save product", "name", p.Name)
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.Product{}, id).Error, "delete product")
}

// DecrementStock takes qty units from product id only if that many remain.
// It reports false when the guard rejected the update.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, wrap(res.Error, "decrement stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductRepository) All(ctx context.Context, page, limit int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	p, err := r.query(ctx).Order("id").Paginate(&products, page, limit)
	return products, p, wrap(err, "list products")
}

// SearchByName matches names containing term, ignoring case.
func (r *ProductRepository) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%").
		Order("name").
		Get(&products)
	return products, wrap(err, "search products")
}

func (r *ProductRepository) PriceBetween(ctx context.Context, min, max float64) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).Where("price BETWEEN ? AND ?", min, max).Order("price").Get(&products)
	return products, wrap(err, "products by price")
}

func (r *ProductRepository) StockBelow(ctx context.Context, below int) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).Where("stock < ?", below).Order("stock").Get(&products)
	return products, wrap(err, "low stock products")
}

// OrderedBy lists every product sorted by column ("price" or "name") ascending.
func (r *ProductRepository) OrderedBy(ctx context.Context, column string) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}}).
		Order("id").
		Get(&products)
	return products, wrap(err, "sorted products")
}

// BestSellers sums units per product over orders dated at or after since.
// A zero since covers every order.
func (r *ProductRepository) BestSellers(ctx context.Context, since time.Time, limit int) ([]BestSeller, error) {
	q := r.db.WithContext(ctx).
		Table("order_lines").
		Select("products.id AS product_id, products.name AS name, SUM(order_lines.quantity) AS units").
		Joins("JOIN products ON products.id = order_lines.product_id")
	if !since.IsZero() {
		q = q.Joins("JOIN orders ON orders.id = order_lines.order_id").Where("orders.date >= ?", since)
	}

	var out []BestSeller
	err := q.Group("products.id, products.name").
		Order("units DESC").
		Order("products.id").
		Limit(limit).
		Scan(&out).Error
	return out, wrap(err, "best sellers")
}

// MostExpensivePurchased lists products that appear on any order line,
// most expensive first.
func (r *ProductRepository) MostExpensivePurchased(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).
		Where("EXISTS (SELECT 1 FROM order_lines WHERE order_lines.product_id = products.id)").
		Order("price DESC").
		Order("id").
		Limit(limit).
		Get(&products)
	return products, wrap(err, "most expensive purchased")
}
