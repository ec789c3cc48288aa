// Package cart is the session shopping cart: an ordered set of entries keyed
// by product id, plus the derived totals shown to the shopper. It holds no
// storage of its own; callers load and save the entries through the session.
package cart

import "github.com/shashiranjanraj/storefront/pkg/apperror"

// SessionKey is where the entries live in the session.
const SessionKey = "cart"

// Item is the catalog view the cart checks against.
type Item struct {
	ID    uint
	Name  string
	Price float64
	Stock int
}

// Entry is one cart line. UnitPrice is the price when the product was added.
type Entry struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type Cart struct {
	Entries []Entry `json:"entries"`
}

// New wraps entries loaded from the session.
func New(entries []Entry) *Cart {
	return &Cart{Entries: entries}
}

func (c *Cart) index(productID uint) int {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity reports how many units of productID the cart holds.
func (c *Cart) Quantity(productID uint) int {
	if i := c.index(productID); i >= 0 {
		return c.Entries[i].Quantity
	}
	return 0
}

// Add merges quantity into the entry for item. The merged quantity may not
// exceed the stock; on failure the cart is unchanged.
func (c *Cart) Add(item Item, quantity int) error {
	if quantity <= 0 {
		return apperror.Invalid("quantity", "The quantity must be greater than 0.")
	}
	i := c.index(item.ID)
	merged := quantity
	if i >= 0 {
		merged += c.Entries[i].Quantity
	}
	if merged > item.Stock {
		return apperror.InsufficientStock(item.Name, merged, item.Stock)
	}
	if i >= 0 {
		c.Entries[i].Quantity = merged
		return nil
	}
	c.Entries = append(c.Entries, Entry{
		ProductID: item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  quantity,
	})
	return nil
}

// Update overwrites the quantity of an existing entry. Products not in the
// cart are ignored, and a quantity of zero or less removes the entry.
func (c *Cart) Update(item Item, quantity int) error {
	i := c.index(item.ID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.Remove(item.ID)
		return nil
	}
	if quantity > item.Stock {
		return apperror.InsufficientStock(item.Name, quantity, item.Stock)
	}
	c.Entries[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	}
}

func (c *Cart) Clear() { c.Entries = nil }

func (c *Cart) Empty() bool { return len(c.Entries) == 0 }

// ProductIDs lists the ids of every entry in cart order.
func (c *Cart) ProductIDs() []uint {
	ids := make([]uint, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ProductID
	}
	return ids
}

// Check verifies every entry against current stock and returns the first
// violation as InsufficientStock. A product missing from current counts as
// zero stock.
func (c *Cart) Check(current map[uint]Item) error {
	for _, e := range c.Entries {
		item, ok := current[e.ProductID]
		if !ok {
			return apperror.InsufficientStock(e.Name, e.Quantity, 0)
		}
		if e.Quantity > item.Stock {
			return apperror.InsufficientStock(item.Name, e.Quantity, item.Stock)
		}
	}
	return nil
}
