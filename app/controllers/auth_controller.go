package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

type AuthController struct {
	service *services.AuthService
	cookie  string
	secure  bool
}

// NewAuthController issues tokens through service and mirrors them in the
// cookie named cookie. secure marks the cookie Secure.
func NewAuthController(service *services.AuthService, cookie string, secure bool) *AuthController {
	return &AuthController{service: service, cookie: cookie, secure: secure}
}

// Login POST /login
func (ac *AuthController) Login(c *ctx.Context) {
	var input services.LoginInput
	if !c.BindJSON(&input) {
		return
	}

	res, err := ac.service.Login(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}

	c.SetHeader("Authorization", "Bearer "+res.Token)
	c.SetCookie(&http.Cookie{
		Name:     ac.cookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   int(ac.service.Tokens().TTL().Seconds()),
		HttpOnly: true,
		Secure:   ac.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Message("Login successful", map[string]any{
		"token":      res.Token,
		"username":   res.Username,
		"roles":      res.Roles,
		"expires_at": res.ExpiresAt,
		"message":    "Login successful",
	})
}

// Logout POST /logout
func (ac *AuthController) Logout(c *ctx.Context) {
	middleware.ClearAuthCookie(c.W, ac.cookie)
	sess := c.Session()
	sess.Invalidate()
	if err := sess.Save(c.Context(), c.W); err != nil {
		logger.WithCtx(c.Context()).Warn("logout: session not saved", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Me GET /api/auth/me
func (ac *AuthController) Me(c *ctx.Context) {
	p := c.Principal()
	c.Success(map[string]any{
		"username": p.Username,
		"roles":    p.Roles,
		"admin":    p.IsAdmin(),
	})
}
