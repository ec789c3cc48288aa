package kernel_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	ready  *atomic.Bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ready := atomic.NewBool(true)
	k, err := kernel.New(kernel.Deps{
		DB:     testdb.Open(t),
		Cache:  cache.NewMemoryStore(),
		Tokens: auth.NewTokenService("kernel-test-secret", time.Hour),
		Ready:  ready,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, client: newClient(t), ready: ready}
}

// newClient keeps cookies and does not follow redirects.
func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (h *harness) do(c *http.Client, method, path, token string, body any) (*http.Response, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(c, req)
}

func (h *harness) form(c *http.Client, path string, values url.Values) *http.Response {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+path, strings.NewReader(values.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, _ := h.send(c, req)
	return res
}

func (h *harness) send(c *http.Client, req *http.Request) (*http.Response, envelope) {
	h.t.Helper()
	res, err := c.Do(req)
	require.NoError(h.t, err)
	defer res.Body.Close()

	var env envelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res, env
}

func (h *harness) register(username string) {
	h.t.Helper()
	res, _ := h.do(h.client, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(h.t, http.StatusCreated, res.StatusCode)
}

func (h *harness) login(c *http.Client, username string) string {
	h.t.Helper()
	res, env := h.do(c, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(h.t, http.StatusOK, res.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &data))
	assert.Equal(h.t, "Bearer "+data.Token, res.Header.Get("Authorization"))
	return data.Token
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (h *harness) createProduct(token, name string, price float64, stock int) uint {
	h.t.Helper()
	res, env := h.do(h.client, http.MethodPost, "/api/products", token, map[string]any{
		"name": name, "price": price, "stock": stock,
	})
	require.Equal(h.t, http.StatusCreated, res.StatusCode)
	return uint(decode(h.t, env.Data)["id"].(float64))
}

func TestOrderFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.register("root")
	h.register("alice")
	rootToken := h.login(h.client, "root")
	aliceToken := h.login(newClient(t), "alice")

	widget := h.createProduct(rootToken, "Widget", 10, 5)

	res, _ := h.do(h.client, http.MethodPost, "/api/products", aliceToken, map[string]any{"name": "X", "price": 1, "stock": 1})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, env := h.do(h.client, http.MethodPost, "/api/orders", aliceToken, map[string]any{
		"lines": []map[string]any{{"product_id": widget, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	order := decode(t, env.Data)
	assert.Equal(t, 20.0, order["total"])
	orderPath := fmt.Sprintf("/api/orders/%d", uint(order["id"].(float64)))

	res, env = h.do(h.client, http.MethodPost, "/api/orders", aliceToken, map[string]any{
		"lines": []map[string]any{{"product_id": widget, "quantity": 4}},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, env.Message, "Widget")

	res, _ = h.do(h.client, http.MethodGet, "/api/orders/mine", aliceToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = h.do(h.client, http.MethodGet, orderPath, aliceToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = h.do(h.client, http.MethodGet, "/api/orders", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = h.do(h.client, http.MethodDelete, orderPath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = h.do(h.client, http.MethodGet, "/api/orders/user/root", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = h.do(h.client, http.MethodGet, "/api/orders/stats/units-per-user", rootToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = h.do(h.client, http.MethodDelete, orderPath, rootToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = h.do(h.client, http.MethodGet, orderPath, rootToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGatewayRejections(t *testing.T) {
	h := newHarness(t)

	res, _ := h.do(h.client, http.MethodPost, "/api/orders", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = h.do(h.client, http.MethodGet, "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = h.do(h.client, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	res, env := h.do(h.client, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, http.StatusNotFound, env.Status)

	res, _ = h.do(h.client, http.MethodPost, "/login", "", map[string]string{"username": "ghost", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestBrowserCartCheckout(t *testing.T) {
	h := newHarness(t)
	h.register("root")
	h.register("bob")
	widget := h.createProduct(h.login(h.client, "root"), "Widget", 10, 5)

	browser := newClient(t)
	h.login(browser, "bob")
	id := fmt.Sprint(widget)

	res := h.form(browser, "/cart/add", url.Values{"product_id": {id}, "quantity": {"3"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/cart", res.Header.Get("Location"))

	h.form(browser, "/cart/add", url.Values{"product_id": {id}, "quantity": {"3"}})
	res, env := h.do(browser, http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	data := decode(t, env.Data)
	assert.Contains(t, data["error"], "Widget")
	summary := data["cart"].(map[string]any)
	assert.Equal(t, 3.0, summary["count"])
	assert.Equal(t, 30.0, summary["total"])

	res = h.form(browser, "/cart/checkout", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res, env = h.do(browser, http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	data = decode(t, env.Data)
	assert.Contains(t, data["success"], "placed")
	assert.Equal(t, 0.0, data["cart"].(map[string]any)["count"])

	res, env = h.do(h.client, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 2.0, decode(t, env.Data)["stock"])
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t)

	res, _ := h.do(h.client, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = h.do(h.client, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	h.ready.Store(false)
	res, _ = h.do(h.client, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	res, _ = h.do(h.client, http.MethodPost, "/graphql", "", map[string]string{"query": "{ products { name } }"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLoginCookieIsNamedLikeTheHeader(t *testing.T) {
	h := newHarness(t)
	h.register("root")
	res, _ := h.do(h.client, http.MethodPost, "/login", "", map[string]string{
		"username": "root",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var names []string
	for _, c := range res.Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Authorization")

	// the jar now carries the token cookie, which browser routes accept
	res, _ = h.do(h.client, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
