package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/cart"
)

var widget = cart.Item{ID: 1, Name: "Widget", Price: 10, Stock: 5}

func TestAddMergesAndRespectsStock(t *testing.T) {
	c := cart.New(nil)
	require.NoError(t, c.Add(widget, 3))

	err := c.Add(widget, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	e, _ := apperror.As(err)
	assert.Equal(t, "Widget", e.Subject)
	assert.Equal(t, 3, c.Quantity(widget.ID))

	require.NoError(t, c.Add(widget, 2))
	assert.Equal(t, 5, c.Quantity(widget.ID))
	assert.Len(t, c.Entries, 1)
}

func TestAddRejectsNonPositive(t *testing.T) {
	c := cart.New(nil)
	assert.ErrorIs(t, c.Add(widget, 0), apperror.ErrValidation)
	assert.True(t, c.Empty())
}

func TestUpdate(t *testing.T) {
	c := cart.New(nil)
	gadget := cart.Item{ID: 2, Name: "Gadget", Price: 25, Stock: 1}

	require.NoError(t, c.Update(gadget, 1))
	assert.True(t, c.Empty(), "update of an absent product is a no-op")

	require.NoError(t, c.Add(widget, 1))
	require.NoError(t, c.Update(widget, 4))
	assert.Equal(t, 4, c.Quantity(widget.ID))

	assert.ErrorIs(t, c.Update(widget, 6), apperror.ErrInsufficientStock)
	assert.Equal(t, 4, c.Quantity(widget.ID))

	require.NoError(t, c.Update(widget, 0))
	assert.True(t, c.Empty())
}

func TestRemoveAndCheck(t *testing.T) {
	c := cart.New(nil)
	require.NoError(t, c.Add(widget, 3))
	require.NoError(t, c.Add(cart.Item{ID: 2, Name: "Gadget", Price: 25, Stock: 2}, 2))

	err := c.Check(map[uint]cart.Item{1: {ID: 1, Name: "Widget", Stock: 2}, 2: {ID: 2, Name: "Gadget", Stock: 2}})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	c.Remove(1)
	assert.Equal(t, []uint{2}, c.ProductIDs())
	assert.NoError(t, c.Check(map[uint]cart.Item{2: {ID: 2, Name: "Gadget", Stock: 2}}))
}

func TestSummarize(t *testing.T) {
	c := cart.New(nil)
	require.NoError(t, c.Add(widget, 3))
	require.NoError(t, c.Add(cart.Item{ID: 2, Name: "Gizmo", Price: 0.1, Stock: 9}, 3))

	s := cart.Summarize(c, map[uint]cart.Item{1: widget, 2: {ID: 2, Name: "Gizmo", Price: 0.1, Stock: 2}})
	assert.Equal(t, 30.3, s.Total)
	assert.Equal(t, 6, s.Count)
	assert.False(t, s.Valid)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, 30.0, s.Lines[0].Subtotal)
	assert.True(t, s.Lines[0].Valid)
	assert.False(t, s.Lines[1].Valid)

	empty := cart.Summarize(cart.New(nil), nil)
	assert.True(t, empty.Valid)
	assert.Zero(t, empty.Total)
}

func TestSummarizeUsesCurrentPrice(t *testing.T) {
	c := cart.New(nil)
	require.NoError(t, c.Add(widget, 2))
	require.NoError(t, c.Add(cart.Item{ID: 2, Name: "Gizmo", Price: 4, Stock: 9}, 1))

	raised := widget
	raised.Price = 12.5
	// Gizmo was removed from the catalog and keeps its snapshot price
	s := cart.Summarize(c, map[uint]cart.Item{1: raised})

	require.Len(t, s.Lines, 2)
	assert.Equal(t, 12.5, s.Lines[0].UnitPrice)
	assert.Equal(t, 25.0, s.Lines[0].Subtotal)
	assert.Equal(t, 4.0, s.Lines[1].Subtotal)
	assert.False(t, s.Lines[1].Valid)
	assert.Equal(t, 29.0, s.Total)
}
