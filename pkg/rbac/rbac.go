// Package rbac holds the per-route access policies. They read the principal
// the authentication gateway stored in the request context.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

// Authenticated rejects anonymous requests.
func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			middleware.Deny(w, r, apperror.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HasRole allows principals holding at least one of roles. Anonymous
// requests get 401, authenticated ones without the role get 403.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.FromContext(r.Context())
			if !p.Authenticated() {
				middleware.Deny(w, r, apperror.Unauthenticated("authentication required"))
				return
			}
			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			middleware.Deny(w, r, apperror.Forbidden("insufficient role"))
		})
	}
}

// Admin is HasRole(auth.RoleAdmin).
func Admin(next http.Handler) http.Handler {
	return HasRole(auth.RoleAdmin)(next)
}
