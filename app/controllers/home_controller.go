package controllers

import (
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// Home is the public landing page. Browser redirects after a rejected
// token or a failed flow end up here, so any pending flash is shown.
func Home(c *ctx.Context) {
	p := c.Principal()
	data := map[string]any{
		"name":          "storefront",
		"authenticated": p.Authenticated(),
		"links": map[string]string{
			"products": "/api/products",
			"cart":     "/cart",
			"login":    "/login",
			"graphql":  "/graphql",
		},
	}
	if p.Authenticated() {
		data["username"] = p.Username
	}

	sess := c.Session()
	if msg, ok := sess.GetFlash("error"); ok {
		data["error"] = msg
		_ = sess.Save(c.Context(), c.W)
	}
	c.Success(data)
}
