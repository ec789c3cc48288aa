package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/router"
)

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupsComposePrefixAndMiddleware(t *testing.T) {
	r := router.New()
	api := r.Group("/api", tag("api"))
	admin := api.Group("/orders", tag("admin"))
	admin.Delete("/{id}", "orders.destroy", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/orders/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "admin", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRoutesResolve(t *testing.T) {
	r := router.New()
	r.Group("/api/products").Get("/{id}", "products.show", ok)

	path, found := r.Path("products.show")
	require.True(t, found)
	assert.Equal(t, "/api/products/{id}", path)

	url, err := r.URL("products.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/9", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutesAreListedSorted(t *testing.T) {
	r := router.New()
	r.Post("/login", "auth.login", ok)
	g := r.Group("/api/orders")
	g.Put("/{id}", "orders.update", ok)
	g.Get("/{id}", "orders.show", ok)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.Route{Method: http.MethodGet, Path: "/api/orders/{id}", Name: "orders.show"}, routes[0])
	assert.Equal(t, http.MethodPut, routes[1].Method)
	assert.Equal(t, "/login", routes[2].Path)
}
