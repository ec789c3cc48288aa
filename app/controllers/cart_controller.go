package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const cartPath = "/cart"

// CartController serves the browser cart. Mutations are form posts that
// redirect back to the cart with a flash message.
type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

// Show GET /cart
func (cc *CartController) Show(c *ctx.Context) {
	sess := c.Session()
	current := cart.Load(sess)
	summary, err := cc.service.Summary(c.Context(), current)
	if err != nil {
		c.Fail(err)
		return
	}

	data := map[string]any{"cart": summary}
	if msg, ok := sess.GetFlash("error"); ok {
		data["error"] = msg
	}
	if msg, ok := sess.GetFlash("success"); ok {
		data["success"] = msg
	}
	if err := sess.Save(c.Context(), c.W); err != nil {
		logger.WithCtx(c.Context()).Warn("cart: session not saved", "error", err)
	}
	c.Success(data)
}

// Add POST /cart/add (product_id, quantity)
func (cc *CartController) Add(c *ctx.Context) {
	cc.mutate(c, "Added to cart.", func(current *cart.Cart, productID uint, quantity int) error {
		return cc.service.Add(c.Context(), current, productID, quantity)
	})
}

// Update POST /cart/update (product_id, quantity)
func (cc *CartController) Update(c *ctx.Context) {
	cc.mutate(c, "Cart updated.", func(current *cart.Cart, productID uint, quantity int) error {
		return cc.service.Update(c.Context(), current, productID, quantity)
	})
}

// Remove POST /cart/remove (product_id)
func (cc *CartController) Remove(c *ctx.Context) {
	cc.mutate(c, "Removed from cart.", func(current *cart.Cart, productID uint, _ int) error {
		cc.service.Remove(current, productID)
		return nil
	})
}

// Checkout POST /cart/checkout
func (cc *CartController) Checkout(c *ctx.Context) {
	sess := c.Session()
	current := cart.Load(sess)

	order, err := cc.service.Checkout(c.Context(), c.Principal(), current)
	if err != nil {
		cc.back(c, err)
		return
	}
	if err := cart.Store(sess, current); err != nil {
		cc.back(c, err)
		return
	}
	sess.Flash("success", fmt.Sprintf("Order #%d placed, total %.2f.", order.ID, order.Total))
	cc.redirect(c)
}

func (cc *CartController) mutate(c *ctx.Context, success string, fn func(*cart.Cart, uint, int) error) {
	productID, err := formUint(c, "product_id")
	if err != nil {
		cc.back(c, err)
		return
	}
	quantity := 1
	if raw := c.PostForm("quantity"); raw != "" {
		if quantity, err = strconv.Atoi(raw); err != nil {
			cc.back(c, apperror.Invalid("quantity", "The quantity must be an integer."))
			return
		}
	}

	sess := c.Session()
	current := cart.Load(sess)
	if err := fn(current, productID, quantity); err != nil {
		cc.back(c, err)
		return
	}
	if err := cart.Store(sess, current); err != nil {
		cc.back(c, err)
		return
	}
	sess.Flash("success", success)
	cc.redirect(c)
}

// back flashes err and returns to the cart.
func (cc *CartController) back(c *ctx.Context, err error) {
	msg := "Something went wrong, please try again."
	if e, ok := apperror.As(err); ok && e.Kind != apperror.KindUnexpected {
		msg = e.Message
	} else {
		logger.WithCtx(c.Context()).Error("cart: unexpected failure", "error", err)
	}
	c.Session().Flash("error", msg)
	cc.redirect(c)
}

func (cc *CartController) redirect(c *ctx.Context) {
	if err := c.Session().Save(c.Context(), c.W); err != nil {
		logger.WithCtx(c.Context()).Warn("cart: session not saved", "error", err)
	}
	c.Redirect(http.StatusSeeOther, cartPath)
}

func formUint(c *ctx.Context, key string) (uint, error) {
	n, err := strconv.ParseUint(c.PostForm(key), 10, 64)
	if err != nil || n == 0 {
		return 0, apperror.Invalid(key, "The "+key+" field is required.")
	}
	return uint(n), nil
}
