package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
)

type fixture struct {
	db       *gorm.DB
	events   *event.Dispatcher
	users    *services.UserService
	orders   *services.OrderService
	products *services.ProductService
	carts    *services.CartService
	auth     *services.AuthService
	admin    auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	events := event.New()
	orders := services.NewOrderService(db, events)
	f := &fixture{
		db:       db,
		events:   events,
		users:    services.NewUserService(db, events),
		orders:   orders,
		products: services.NewProductService(db, cache.NewMemoryStore(), nil, events),
		carts:    services.NewCartService(db, orders),
		auth:     services.NewAuthService(db, auth.NewTokenService("test-secret", time.Hour)),
	}

	// the first account bootstraps as admin
	admin := f.register(t, auth.Principal{}, "root", false)
	require.True(t, admin.IsAdmin())
	f.admin = principal(admin)
	return f
}

func principal(u models.User) auth.Principal {
	return auth.Principal{Username: u.Username, Roles: u.RoleNames()}
}

func (f *fixture) register(t *testing.T, actor auth.Principal, username string, admin bool) models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), actor, services.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		Admin:    admin,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), f.admin, services.ProductInput{
		Name:  name,
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
