// Package services holds the storefront's business workflows. Every
// operation receives the acting principal explicitly; services never read
// it from ambient request state.
package services

import (
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Event names fired on the dispatcher after a transaction commits.
const (
	EventOrderPlaced    = "order.placed"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventUserDeleted    = "user.deleted"
)

// StockLevel is one product's stock after a mutation.
type StockLevel struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	OrderID  uint         `json:"order_id"`
	Username string       `json:"username"`
	Total    float64      `json:"total"`
	Units    int          `json:"units"`
	Stock    []StockLevel `json:"stock"`
}

// ProductDeleted is the payload of EventProductDeleted.
type ProductDeleted struct {
	ProductID uint `json:"product_id"`
}

// UserDeleted is the payload of EventUserDeleted.
type UserDeleted struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Orders   int    `json:"orders"`
}

func requireAuthenticated(actor auth.Principal) error {
	if !actor.Authenticated() {
		return apperror.Unauthenticated("authentication required")
	}
	return nil
}

func requireAdmin(actor auth.Principal) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperror.Forbidden("admin role required")
	}
	return nil
}

// selfOrAdmin allows the owner of a resource or any admin.
func selfOrAdmin(actor auth.Principal, owner string) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Username != owner && !actor.IsAdmin() {
		return apperror.Forbidden("not allowed to access another user's data")
	}
	return nil
}

func validateInput(v interface{}) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return apperror.Validation("The given data was invalid.", errs)
	}
	return nil
}
