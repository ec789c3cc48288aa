// Package session provides cookie-identified sessions stored in a
// cache.Store (Redis or memory).
//
//	r.Use(session.Middleware(store, session.DefaultOptions()))
//
//	sess := session.FromCtx(r)
//	_ = sess.Set("cart", entries)
//	_ = sess.Save(r.Context(), w)
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "storefront_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is the per-request handle. Values are kept JSON-encoded so any
// type round-trips through Redis unchanged.
type Session struct {
	id      string
	data    map[string]json.RawMessage
	store   cache.Store
	opts    Options
	changed bool
	dropped string
}

func storeKey(id string) string { return "storefront:session:" + id }

func (s *Session) ID() string { return s.id }

// Set stores value under key.
func (s *Session) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	s.data[key] = raw
	s.changed = true
	return nil
}

// Get decodes the value under key into dest and reports whether it existed.
func (s *Session) Get(key string, dest interface{}) bool {
	raw, ok := s.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Session) GetString(key string) (string, bool) {
	var v string
	ok := s.Get(key, &v)
	return v, ok
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.changed = true
	}
}

// Flash stores a message removed by the next GetFlash.
func (s *Session) Flash(key, message string) {
	_ = s.Set("_flash_"+key, message)
}

func (s *Session) GetFlash(key string) (string, bool) {
	v, ok := s.GetString("_flash_" + key)
	if ok {
		s.Delete("_flash_" + key)
	}
	return v, ok
}

// Invalidate clears the data and rotates the id; the old record is removed
// on Save.
func (s *Session) Invalidate() {
	s.dropped = s.id
	s.id = uuid.NewString()
	s.data = map[string]json.RawMessage{}
	s.changed = true
}

// Save persists the session and writes the cookie. It is a no-op when
// nothing changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.dropped != "" {
		_ = s.store.Del(ctx, storeKey(s.dropped))
		s.dropped = ""
	}

	if err := s.store.Set(ctx, storeKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// Middleware loads the session named by the cookie, or starts a new one,
// and puts it in the request context.
func Middleware(store cache.Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{store: store, opts: opts, data: map[string]json.RawMessage{}}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" &&
				store.Get(r.Context(), storeKey(cookie.Value), &sess.data) {
				sess.id = cookie.Value
			} else {
				sess.id = uuid.NewString()
				sess.data = map[string]json.RawMessage{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx returns the request's session. Outside the middleware it returns
// a fresh in-memory session.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{
		id:    uuid.NewString(),
		data:  map[string]json.RawMessage{},
		store: cache.NewMemoryStore(),
		opts:  DefaultOptions(),
	}
}
