package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

// Register handles both POST /api/users/register and the admin-only
// POST /api/users. An admin grant is decided by the service.
func (uc *UserController) Register(c *ctx.Context) {
	var input services.CreateUserInput
	if !c.BindJSON(&input) {
		return
	}
	user, err := uc.service.Register(c.Context(), c.Principal(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(user)
}

// Index GET /api/users
func (uc *UserController) Index(c *ctx.Context) {
	users, p, err := uc.service.List(c.Context(), c.Principal(), c.QueryInt("page", 1), c.QueryInt("limit", orm.DefaultLimit))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(users, p)
}

// Show GET /api/users/{id}
func (uc *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := uc.service.Get(c.Context(), c.Principal(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

// Update PUT /api/users/{id}
func (uc *UserController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var input services.UpdateUserInput
	if !c.BindJSON(&input) {
		return
	}
	user, err := uc.service.Update(c.Context(), c.Principal(), id, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

// Destroy DELETE /api/users/{id}
func (uc *UserController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := uc.service.Delete(c.Context(), c.Principal(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("User deleted", nil)
}
