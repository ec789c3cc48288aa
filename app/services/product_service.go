package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Cache keys for the best-seller reports. Both are forgotten when an order
// is placed or a product removed.
const (
	CacheKeyBestSellers          = "products:best-sellers"
	CacheKeyBestSellersLastMonth = "products:best-sellers:last-month"

	bestSellerTTL    = 60 * time.Second
	bestSellerLimit  = 10
	mostExpensiveTop = 10
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type ProductInput struct {
	Name        string   `json:"name"        validate:"required,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Stock       *int     `json:"stock"       validate:"required,gte=0"`
}

type ProductService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	cache    cache.Store
	disk     storage.Disk
	events   *event.Dispatcher
	now      func() time.Time
}

// NewProductService wires the catalog. disk may be nil when image uploads
// are not configured.
func NewProductService(db *gorm.DB, store cache.Store, disk storage.Disk, events *event.Dispatcher) *ProductService {
	return &ProductService{
		db:       db,
		products: repositories.NewProductRepository(db),
		orders:   repositories.NewOrderRepository(db),
		cache:    store,
		disk:     disk,
		events:   events,
		now:      time.Now,
	}
}

func (s *ProductService) Get(ctx context.Context, id uint) (models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, page, limit int) ([]models.Product, orm.Pagination, error) {
	return s.products.All(ctx, page, limit)
}

func (s *ProductService) Create(ctx context.Context, actor auth.Principal, in ProductInput) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}
	if err := s.check(ctx, in, 0); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       *in.Price,
		Stock:       *in.Stock,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	s.changed(p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actor auth.Principal, id uint, in ProductInput) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.check(ctx, in, p.ID); err != nil {
		return models.Product{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = *in.Price
	p.Stock = *in.Stock
	if err := s.products.Save(ctx, &p); err != nil {
		return models.Product{}, err
	}
	s.changed(p)
	return p, nil
}

func (s *ProductService) check(ctx context.Context, in ProductInput, exceptID uint) error {
	if err := validateInput(in); err != nil {
		return err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperror.Invalid("name", "The name field is required.")
	}
	taken, err := s.products.NameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Duplicate("name", name)
	}
	return nil
}

// Delete removes the product and every order line referencing it.
func (s *ProductService) Delete(ctx context.Context, actor auth.Principal, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		var err error
		if p, err = products.FindByID(ctx, id); err != nil {
			return err
		}
		if err := s.orders.WithTx(tx).DeleteLinesOfProduct(ctx, id); err != nil {
			return err
		}
		return products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if p.ImagePath != "" && s.disk != nil {
		if err := s.disk.Delete(ctx, p.ImagePath); err != nil {
			logger.WithCtx(ctx).Warn("product image not removed", "product_id", id, "error", err)
		}
	}
	s.ForgetReports(ctx)
	s.events.Fire(EventProductDeleted, ProductDeleted{ProductID: id})
	return nil
}

func (s *ProductService) changed(p models.Product) {
	s.events.Fire(EventProductUpdated, StockLevel{ProductID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock})
}

// SearchByName matches names containing term, ignoring case.
func (s *ProductService) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.Invalid("name", "The name field is required.")
	}
	return s.products.SearchByName(ctx, term)
}

func (s *ProductService) PriceRange(ctx context.Context, min, max float64) ([]models.Product, error) {
	if min < 0 || max < min {
		return nil, apperror.Validation("invalid price range", map[string]string{
			"min": "The min must be at least 0 and not above max.",
		})
	}
	return s.products.PriceBetween(ctx, min, max)
}

func (s *ProductService) LowStock(ctx context.Context, below int) ([]models.Product, error) {
	if below < 0 {
		return nil, apperror.Invalid("below", "The below must be at least 0.")
	}
	return s.products.StockBelow(ctx, below)
}

// Sorted lists the catalog by "price" or "name".
func (s *ProductService) Sorted(ctx context.Context, by string) ([]models.Product, error) {
	switch by {
	case "price", "name":
		return s.products.OrderedBy(ctx, by)
	default:
		return nil, apperror.Invalid("by", "The by must be one of: price name.")
	}
}

// BestSellers ranks products by units sold over all time.
func (s *ProductService) BestSellers(ctx context.Context) ([]repositories.BestSeller, error) {
	return s.bestSellers(ctx, CacheKeyBestSellers, time.Time{})
}

// BestSellersSince ranks products by units sold during the last month.
func (s *ProductService) BestSellersSince(ctx context.Context) ([]repositories.BestSeller, error) {
	return s.bestSellers(ctx, CacheKeyBestSellersLastMonth, s.now().AddDate(0, -1, 0))
}

func (s *ProductService) bestSellers(ctx context.Context, key string, since time.Time) ([]repositories.BestSeller, error) {
	out := []repositories.BestSeller{}
	hit, err := orm.On(s.db).Cache(ctx, s.cache, key, bestSellerTTL, &out, func(db *gorm.DB) error {
		rows, err := s.products.WithTx(db).BestSellers(ctx, since, bestSellerLimit)
		if err != nil {
			return err
		}
		out = append(out, rows...)
		return nil
	})
	metrics.ObserveCache(key, hit)
	return out, err
}

func (s *ProductService) MostExpensivePurchased(ctx context.Context) ([]models.Product, error) {
	return s.products.MostExpensivePurchased(ctx, mostExpensiveTop)
}

// ForgetReports drops the cached best-seller reports.
func (s *ProductService) ForgetReports(ctx context.Context) {
	if err := s.cache.Del(ctx, CacheKeyBestSellers, CacheKeyBestSellersLastMonth); err != nil {
		logger.WithCtx(ctx).Warn("best-seller cache not cleared", "error", err)
	}
}

// SetImage stores the uploaded image under products/<id><ext> on the
// configured disk and records its path. It returns the public URL.
func (s *ProductService) SetImage(ctx context.Context, actor auth.Principal, id uint, filename string, r io.Reader) (models.Product, string, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, "", err
	}
	if s.disk == nil {
		return models.Product{}, "", apperror.Unexpected("store image", fmt.Errorf("no storage disk configured"))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return models.Product{}, "", apperror.Invalid("image", "The image must be a png, jpg, gif or webp file.")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, "", err
	}

	path := fmt.Sprintf("products/%d%s", p.ID, ext)
	if err := s.disk.Put(ctx, path, r, contentType); err != nil {
		return models.Product{}, "", apperror.Unexpected("store image", err)
	}
	if p.ImagePath != "" && p.ImagePath != path {
		_ = s.disk.Delete(ctx, p.ImagePath)
	}

	p.ImagePath = path
	if err := s.products.Save(ctx, &p); err != nil {
		return models.Product{}, "", err
	}
	return p, s.disk.URL(path), nil
}

// ImageURL resolves the public URL of a stored image path.
func (s *ProductService) ImageURL(path string) string {
	if path == "" || s.disk == nil {
		return ""
	}
	return s.disk.URL(path)
}
