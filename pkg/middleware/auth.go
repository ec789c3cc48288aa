package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// TokenVerifier is satisfied by *auth.TokenService.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// AuthOptions configures the gateway.
type AuthOptions struct {
	Tokens TokenVerifier
	// CookieName is read on browser routes when no Authorization header is sent.
	CookieName string
	// LandingPath is where browser requests are sent after a bad token.
	LandingPath string
	// APIPrefixes classify a request as API; everything else is a browser route.
	APIPrefixes []string
	// Skip lists "METHOD /path" entries that are never verified.
	Skip []string
}

type classKey struct{}

type requestClass struct {
	browser bool
	landing string
	cookie  string
}

// Authenticate verifies the bearer token of each request and stores the
// principal in the context. A missing token leaves the request anonymous
// for the route policy to decide. A bad token is rejected here: 401 for API
// requests, cookie cleared and redirect to the landing page for browser ones.
func Authenticate(opts AuthOptions) func(http.Handler) http.Handler {
	if opts.LandingPath == "" {
		opts.LandingPath = "/"
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[s] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := requestClass{
				browser: !hasAnyPrefix(r.URL.Path, opts.APIPrefixes),
				landing: opts.LandingPath,
				cookie:  opts.CookieName,
			}
			r = r.WithContext(context.WithValue(r.Context(), classKey{}, class))

			if skip[r.Method+" "+r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" && class.browser && opts.CookieName != "" {
				if c, err := r.Cookie(opts.CookieName); err == nil {
					token = strings.TrimPrefix(c.Value, "Bearer ")
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := opts.Tokens.Verify(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("auth: token rejected", "path", r.URL.Path, "error", err)
				if class.browser {
					ClearAuthCookie(w, opts.CookieName)
					http.Redirect(w, r, class.landing, http.StatusSeeOther)
					return
				}
				response.Fail(w, r, apperror.Unauthenticated("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// IsBrowser reports whether the gateway classified r as a browser route.
func IsBrowser(r *http.Request) bool {
	c, _ := r.Context().Value(classKey{}).(requestClass)
	return c.browser
}

// Deny answers a request the route policy refused. Anonymous browser
// requests are redirected to the landing page; everything else gets the
// JSON envelope for err.
func Deny(w http.ResponseWriter, r *http.Request, err error) {
	c, ok := r.Context().Value(classKey{}).(requestClass)
	if ok && c.browser && apperror.KindOf(err) == apperror.KindUnauthenticated {
		http.Redirect(w, r, c.landing, http.StatusSeeOther)
		return
	}
	response.Fail(w, r, err)
}

// ClearAuthCookie expires the token cookie.
func ClearAuthCookie(w http.ResponseWriter, name string) {
	if name == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == strings.TrimSuffix(p, "/") || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
