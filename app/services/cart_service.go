package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cart"
)

// CartService checks carts against the live catalog and turns them into
// orders. The cart itself lives in the caller's session.
type CartService struct {
	products *repositories.ProductRepository
	orders   *OrderService
}

func NewCartService(db *gorm.DB, orders *OrderService) *CartService {
	return &CartService{
		products: repositories.NewProductRepository(db),
		orders:   orders,
	}
}

func itemOf(p models.Product) cart.Item {
	return cart.Item{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

func (s *CartService) item(ctx context.Context, productID uint) (cart.Item, error) {
	if productID == 0 {
		return cart.Item{}, apperror.Invalid("product_id", "The product_id field is required.")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return cart.Item{}, err
	}
	return itemOf(p), nil
}

// current loads the catalog state of every product in c.
func (s *CartService) current(ctx context.Context, c *cart.Cart) (map[uint]cart.Item, error) {
	items := map[uint]cart.Item{}
	if c.Empty() {
		return items, nil
	}
	products, err := s.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		items[p.ID] = itemOf(p)
	}
	return items, nil
}

func (s *CartService) Add(ctx context.Context, c *cart.Cart, productID uint, quantity int) error {
	item, err := s.item(ctx, productID)
	if err != nil {
		return err
	}
	return c.Add(item, quantity)
}

func (s *CartService) Update(ctx context.Context, c *cart.Cart, productID uint, quantity int) error {
	if c.Quantity(productID) == 0 {
		return nil
	}
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	item, err := s.item(ctx, productID)
	if err != nil {
		return err
	}
	return c.Update(item, quantity)
}

func (s *CartService) Remove(c *cart.Cart, productID uint) {
	c.Remove(productID)
}

// Summary prices c and flags lines that exceed the current stock.
func (s *CartService) Summary(ctx context.Context, c *cart.Cart) (cart.Summary, error) {
	items, err := s.current(ctx, c)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Summarize(c, items), nil
}

// Checkout re-checks every entry against current stock, places the order
// and empties c. On any failure c is left as it was.
func (s *CartService) Checkout(ctx context.Context, buyer auth.Principal, c *cart.Cart) (models.Order, error) {
	if err := requireAuthenticated(buyer); err != nil {
		return models.Order{}, err
	}
	if c.Empty() {
		return models.Order{}, apperror.Validation("The cart is empty.", map[string]string{"cart": "The cart is empty."})
	}

	items, err := s.current(ctx, c)
	if err != nil {
		return models.Order{}, err
	}
	if err := c.Check(items); err != nil {
		return models.Order{}, err
	}

	lines := make([]LineRequest, len(c.Entries))
	for i, e := range c.Entries {
		lines[i] = LineRequest{ProductID: e.ProductID, Quantity: e.Quantity}
	}
	order, err := s.orders.PlaceOrder(ctx, buyer, lines)
	if err != nil {
		return models.Order{}, err
	}
	c.Clear()
	return order, nil
}
