// Package routes registers the storefront's HTTP routes.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Controllers are the handlers the route table dispatches to.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Users    *controllers.UserController
	Orders   *controllers.OrderController
	Cart     *controllers.CartController
}

// RegisterAPI mounts the JSON API.
func RegisterAPI(r *router.Router, c Controllers) {
	r.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))

	api := r.Group("/api")
	api.Get("/auth/me", "auth.me", ctx.Wrap(c.Auth.Me), rbac.Authenticated)

	products := api.Group("/products")
	products.Get("/", "products.index", ctx.Wrap(c.Products.Index))
	products.Get("/search", "products.search", ctx.Wrap(c.Products.Search))
	products.Get("/price-range", "products.price-range", ctx.Wrap(c.Products.PriceRange))
	products.Get("/low-stock", "products.low-stock", ctx.Wrap(c.Products.LowStock))
	products.Get("/sorted", "products.sorted", ctx.Wrap(c.Products.Sorted))
	products.Get("/best-sellers", "products.best-sellers", ctx.Wrap(c.Products.BestSellers))
	products.Get("/best-sellers/last-month", "products.best-sellers.last-month", ctx.Wrap(c.Products.BestSellersLastMonth))
	products.Get("/most-expensive-purchased", "products.most-expensive-purchased", ctx.Wrap(c.Products.MostExpensivePurchased))
	products.Get("/{id}", "products.show", ctx.Wrap(c.Products.Show))

	productAdmin := products.Group("", rbac.Admin)
	productAdmin.Post("/", "products.store", ctx.Wrap(c.Products.Store))
	productAdmin.Put("/{id}", "products.update", ctx.Wrap(c.Products.Update))
	productAdmin.Delete("/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy))
	productAdmin.Post("/{id}/image", "products.image", ctx.Wrap(c.Products.Image))

	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(c.Users.Register))
	users.Get("/{id}", "users.show", ctx.Wrap(c.Users.Show), rbac.Authenticated)

	userAdmin := users.Group("", rbac.Admin)
	userAdmin.Post("/", "users.store", ctx.Wrap(c.Users.Register))
	userAdmin.Get("/", "users.index", ctx.Wrap(c.Users.Index))
	userAdmin.Put("/{id}", "users.update", ctx.Wrap(c.Users.Update))
	userAdmin.Delete("/{id}", "users.destroy", ctx.Wrap(c.Users.Destroy))

	orders := api.Group("/orders", rbac.Authenticated)
	orders.Post("/", "orders.store", ctx.Wrap(c.Orders.Store))
	orders.Get("/mine", "orders.mine", ctx.Wrap(c.Orders.Mine))
	orders.Get("/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	orders.Get("/user/{username}", "orders.by-user", ctx.Wrap(c.Orders.ByUser))

	orderAdmin := orders.Group("", rbac.Admin)
	orderAdmin.Get("/", "orders.index", ctx.Wrap(c.Orders.Index))
	orderAdmin.Post("/admin", "orders.store-for", ctx.Wrap(c.Orders.StoreFor))
	orderAdmin.Put("/{id}", "orders.update", ctx.Wrap(c.Orders.Update))
	orderAdmin.Delete("/{id}", "orders.destroy", ctx.Wrap(c.Orders.Destroy))
	orderAdmin.Get("/user/{username}/total-spent", "orders.total-spent", ctx.Wrap(c.Orders.TotalSpent))
	orderAdmin.Delete("/user/{id}/all", "orders.destroy-for-user", ctx.Wrap(c.Orders.DestroyForUser))
	orderAdmin.Get("/stats/count-per-user", "orders.stats.count", ctx.Wrap(c.Orders.CountPerUser))
	orderAdmin.Get("/stats/units-per-user", "orders.stats.units", ctx.Wrap(c.Orders.UnitsPerUser))
	orderAdmin.Get("/stats/lines", "orders.stats.lines", ctx.Wrap(c.Orders.Lines))
}
