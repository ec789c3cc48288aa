package controllers

import (
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Store POST /api/orders
func (oc *OrderController) Store(c *ctx.Context) {
	var input services.PlaceOrderInput
	if !c.BindJSON(&input) {
		return
	}
	order, err := oc.service.PlaceOrder(c.Context(), c.Principal(), input.Lines)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(order)
}

// StoreFor POST /api/orders/admin
func (oc *OrderController) StoreFor(c *ctx.Context) {
	var input services.PlaceOrderForInput
	if !c.BindJSON(&input) {
		return
	}
	order, err := oc.service.PlaceOrderFor(c.Context(), c.Principal(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(order)
}

// Index GET /api/orders
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.service.ListAll(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// Mine GET /api/orders/mine
func (oc *OrderController) Mine(c *ctx.Context) {
	p := c.Principal()
	orders, err := oc.service.ListByOwner(c.Context(), p, p.Username)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// ByUser GET /api/orders/user/{username}
func (oc *OrderController) ByUser(c *ctx.Context) {
	orders, err := oc.service.ListByOwner(c.Context(), c.Principal(), c.Param("username"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// Show GET /api/orders/{id}
func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := oc.service.Get(c.Context(), c.Principal(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Update PUT /api/orders/{id}
func (oc *OrderController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var input services.UpdateOrderInput
	if !c.BindJSON(&input) {
		return
	}
	order, err := oc.service.Update(c.Context(), c.Principal(), id, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Destroy DELETE /api/orders/{id}
func (oc *OrderController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := oc.service.Delete(c.Context(), c.Principal(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Order deleted", nil)
}

// DestroyForUser DELETE /api/orders/user/{id}/all
func (oc *OrderController) DestroyForUser(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	n, err := oc.service.DeleteAllForUser(c.Context(), c.Principal(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Orders deleted", map[string]int{"deleted": n})
}

// TotalSpent GET /api/orders/user/{username}/total-spent
func (oc *OrderController) TotalSpent(c *ctx.Context) {
	username := c.Param("username")
	total, err := oc.service.TotalSpent(c.Context(), c.Principal(), username)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"username": username, "total_spent": total})
}

// CountPerUser GET /api/orders/stats/count-per-user
func (oc *OrderController) CountPerUser(c *ctx.Context) {
	rows, err := oc.service.CountPerUser(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

// UnitsPerUser GET /api/orders/stats/units-per-user
func (oc *OrderController) UnitsPerUser(c *ctx.Context) {
	rows, err := oc.service.UnitsPerUser(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

// Lines GET /api/orders/stats/lines?order_id=&product_id=&username=
func (oc *OrderController) Lines(c *ctx.Context) {
	filter := repositories.LineFilter{
		OrderID:   queryID(c, "order_id"),
		ProductID: queryID(c, "product_id"),
		Username:  c.Query("username"),
	}
	rows, err := oc.service.LinesReport(c.Context(), c.Principal(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func queryID(c *ctx.Context, key string) uint {
	if n := c.QueryInt(key, 0); n > 0 {
		return uint(n)
	}
	return 0
}
