package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// RegisterWeb mounts the browser routes. They authenticate from the token
// cookie and answer failures with a redirect.
func RegisterWeb(r *router.Router, c Controllers) {
	r.Get("/", "home", ctx.Wrap(controllers.Home))
	r.Post("/logout", "auth.logout", ctx.Wrap(c.Auth.Logout))

	cart := r.Group("/cart", rbac.Authenticated)
	cart.Get("/", "cart.show", ctx.Wrap(c.Cart.Show))
	cart.Post("/add", "cart.add", ctx.Wrap(c.Cart.Add))
	cart.Post("/update", "cart.update", ctx.Wrap(c.Cart.Update))
	cart.Post("/remove", "cart.remove", ctx.Wrap(c.Cart.Remove))
	cart.Post("/checkout", "cart.checkout", ctx.Wrap(c.Cart.Checkout))
}
