package models

import "time"

const StatusPending = "PENDING"

// Order is a purchase by one user. Total is the sum of its line subtotals at
// the time the order was placed.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	User      *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Date      time.Time   `gorm:"not null" json:"date"`
	Total     float64     `gorm:"not null" json:"total"`
	Status    string      `gorm:"size:50;not null" json:"status"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderLine is one product of an order with the price paid per unit.
type OrderLine struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"not null;index" json:"order_id"`
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	UnitPrice float64  `gorm:"not null" json:"unit_price"`
}

func (l OrderLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}
