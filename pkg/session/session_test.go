package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

type item struct {
	ID  uint `json:"id"`
	Qty int  `json:"qty"`
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	store := cache.NewMemoryStore()
	opts := session.DefaultOptions()

	write := session.Middleware(store, opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		require.NoError(t, sess.Set("cart", []item{{ID: 1, Qty: 3}}))
		sess.Flash("error", "out of stock")
		require.NoError(t, sess.Save(r.Context(), w))
	}))

	rec := httptest.NewRecorder()
	write.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cart/add", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, opts.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var got []item
	var flash string
	read := session.Middleware(store, opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Get("cart", &got)
		flash, _ = sess.GetFlash("error")
		_, again := sess.GetFlash("error")
		assert.False(t, again)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	read.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []item{{ID: 1, Qty: 3}}, got)
	assert.Equal(t, "out of stock", flash)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	store := cache.NewMemoryStore()
	opts := session.DefaultOptions()

	var id string
	h := session.Middleware(store, opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		id = sess.ID()
		var v []item
		assert.False(t, sess.Get("cart", &v))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: opts.CookieName, Value: "forged"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "forged", id)
}

func TestUnchangedSessionWritesNoCookie(t *testing.T) {
	h := session.Middleware(cache.NewMemoryStore(), session.DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, session.FromCtx(r).Save(r.Context(), w))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Result().Cookies())
}
