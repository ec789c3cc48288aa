package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cart"
)

func TestCartWidgetScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal(f.register(t, auth.Principal{}, "alice", false))
	widget := f.product(t, "Widget", 10, 5)

	c := cart.New(nil)
	require.NoError(t, f.carts.Add(ctx, c, widget.ID, 3))

	err := f.carts.Add(ctx, c, widget.ID, 3)
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	e, _ := apperror.As(err)
	assert.Equal(t, "Widget", e.Subject)
	assert.Equal(t, 3, c.Quantity(widget.ID))

	summary, err := f.carts.Summary(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 30.0, summary.Total)
	assert.True(t, summary.Valid)

	order, err := f.carts.Checkout(ctx, alice, c)
	require.NoError(t, err)
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, 2, f.stock(t, widget.ID))
	assert.True(t, c.Empty())
}

func TestCheckoutRechecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal(f.register(t, auth.Principal{}, "alice", false))
	bob := principal(f.register(t, auth.Principal{}, "bob", false))
	widget := f.product(t, "Widget", 10, 5)

	c := cart.New(nil)
	require.NoError(t, f.carts.Add(ctx, c, widget.ID, 4))

	other := cart.New(nil)
	require.NoError(t, f.carts.Add(ctx, other, widget.ID, 2))
	_, err := f.carts.Checkout(ctx, bob, other)
	require.NoError(t, err)

	summary, err := f.carts.Summary(ctx, c)
	require.NoError(t, err)
	assert.False(t, summary.Valid)

	_, err = f.carts.Checkout(ctx, alice, c)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, 4, c.Quantity(widget.ID), "failed checkout keeps the cart")
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
}

func TestCartUpdateRemoveAndEmptyCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.product(t, "Widget", 10, 5)

	c := cart.New(nil)
	_, err := f.carts.Checkout(ctx, f.admin, c)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.ErrorIs(t, f.carts.Add(ctx, c, 999, 1), apperror.ErrNotFound)

	require.NoError(t, f.carts.Update(ctx, c, widget.ID, 2))
	assert.True(t, c.Empty())

	require.NoError(t, f.carts.Add(ctx, c, widget.ID, 1))
	require.NoError(t, f.carts.Update(ctx, c, widget.ID, 5))
	assert.ErrorIs(t, f.carts.Update(ctx, c, widget.ID, 6), apperror.ErrInsufficientStock)
	assert.Equal(t, 5, c.Quantity(widget.ID))

	f.carts.Remove(c, widget.ID)
	assert.True(t, c.Empty())
}

func TestCartSummaryMatchesCheckoutAfterPriceChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := principal(f.register(t, auth.Principal{}, "alice", false))
	widget := f.product(t, "Widget", 10, 5)

	c := cart.New(nil)
	require.NoError(t, f.carts.Add(ctx, c, widget.ID, 2))

	price, stock := 12.5, 5
	_, err := f.products.Update(ctx, f.admin, widget.ID, services.ProductInput{Name: "Widget", Price: &price, Stock: &stock})
	require.NoError(t, err)

	summary, err := f.carts.Summary(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 25.0, summary.Total)

	order, err := f.carts.Checkout(ctx, alice, c)
	require.NoError(t, err)
	assert.Equal(t, summary.Total, order.Total)
}
