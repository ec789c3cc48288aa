package cart

import "github.com/shopspring/decimal"

// Line is an entry with its subtotal and stock check.
type Line struct {
	Entry
	Subtotal  float64 `json:"subtotal"`
	Available int     `json:"available"`
	Valid     bool    `json:"valid"`
}

// Summary is the derived view of a cart against the current catalog.
type Summary struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
	Valid bool    `json:"valid"`
}

// Summarize prices the cart at current catalog prices, the ones checkout
// charges, and flags lines that no longer fit the current stock. Entries
// whose product is gone keep their snapshot price. An empty cart is valid.
func Summarize(c *Cart, current map[uint]Item) Summary {
	s := Summary{Lines: make([]Line, 0, len(c.Entries)), Valid: true}
	total := decimal.Zero
	for _, e := range c.Entries {
		available := 0
		if item, ok := current[e.ProductID]; ok {
			available = item.Stock
			e.UnitPrice = item.Price
		}

		sub := decimal.NewFromFloat(e.UnitPrice).Mul(decimal.NewFromInt(int64(e.Quantity)))
		total = total.Add(sub)
		s.Count += e.Quantity
		line := Line{
			Entry:     e,
			Subtotal:  sub.Round(2).InexactFloat64(),
			Available: available,
			Valid:     e.Quantity <= available,
		}
		if !line.Valid {
			s.Valid = false
		}
		s.Lines = append(s.Lines, line)
	}
	s.Total = total.Round(2).InexactFloat64()
	return s
}
