// Package kernel assembles the storefront HTTP handler: global middleware,
// the auth gateway, the route table and the ops endpoints.
package kernel

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/atomic"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/schema"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Deps are the process-level resources the kernel wires together.
type Deps struct {
	DB     *gorm.DB
	Cache  cache.Store
	Disk   storage.Disk
	Tokens *auth.TokenService
	Events *event.Dispatcher
	Feed   *ws.Hub
	// Ready backs /readyz. A nil flag reports ready.
	Ready *atomic.Bool

	// StorageRoot, when set, is served read-only under /storage/.
	StorageRoot string

	AuthCookie    string
	SecureCookies bool
	SessionTTL    time.Duration
	RateMax       int
	RateWindow    time.Duration
}

// apiPrefixes classify API requests for the gateway; the rest are browser routes.
var apiPrefixes = []string{"/api/", "/login", "/graphql"}

type Kernel struct {
	router  *router.Router
	handler http.Handler
}

// New builds the services and the handler. Event listeners are registered
// on d.Events, so call it once per dispatcher.
func New(d Deps) (*Kernel, error) {
	if d.Cache == nil {
		d.Cache = cache.Default
	}
	if d.Events == nil {
		d.Events = event.New()
	}
	if d.Feed == nil {
		d.Feed = ws.NewHub()
	}
	if d.AuthCookie == "" {
		d.AuthCookie = "Authorization"
	}
	if d.RateMax <= 0 {
		d.RateMax, d.RateWindow = 200, time.Minute
	}

	orders := services.NewOrderService(d.DB, d.Events)
	products := services.NewProductService(d.DB, d.Cache, d.Disk, d.Events)
	users := services.NewUserService(d.DB, d.Events)
	carts := services.NewCartService(d.DB, orders)
	logins := services.NewAuthService(d.DB, d.Tokens)

	stream := sse.NewBroker()
	listeners.Register(d.Events, listeners.Feeds{d.Feed, stream}, products)

	catalog, err := schema.Catalog(products)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	sessOpts := session.DefaultOptions()
	if d.SessionTTL > 0 {
		sessOpts.TTL = d.SessionTTL
	}
	sessOpts.Secure = d.SecureCookies

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		session.Middleware(d.Cache, sessOpts),
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(d.RateMax, d.RateWindow),
		middleware.Authenticate(middleware.AuthOptions{
			Tokens:      d.Tokens,
			CookieName:  d.AuthCookie,
			LandingPath: "/",
			APIPrefixes: apiPrefixes,
			Skip:        []string{"POST /login"},
		}),
	)

	r.Get("/metrics", "ops.metrics", metrics.Handler())
	r.Get("/healthz", "ops.healthz", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", "ops.readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil && !d.Ready.Load() {
			response.Error(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		response.Success(w, map[string]string{"status": "ready"})
	})
	if d.StorageRoot != "" {
		files := http.StripPrefix("/storage/", http.FileServer(http.Dir(d.StorageRoot)))
		r.Get("/storage/*", "storage.files", files.ServeHTTP)
	}
	r.Get("/ws/stock", "feed.stock", d.Feed.ServeHTTP)
	r.Get("/sse/stock", "feed.stock.sse", stream.ServeHTTP)
	r.Get("/graphql", "graphql.query", graphql.Handler(catalog))
	r.Post("/graphql", "graphql.execute", graphql.Handler(catalog))

	ctrl := routes.Controllers{
		Auth:     controllers.NewAuthController(logins, d.AuthCookie, d.SecureCookies),
		Products: controllers.NewProductController(products),
		Users:    controllers.NewUserController(users),
		Orders:   controllers.NewOrderController(orders),
		Cart:     controllers.NewCartController(carts),
	}
	routes.RegisterWeb(r, ctrl)
	routes.RegisterAPI(r, ctrl)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return &Kernel{router: r, handler: r.Handler()}, nil
}

func (k *Kernel) Handler() http.Handler { return k.handler }

// Routes lists the route table for route:list.
func (k *Kernel) Routes() []router.Route { return k.router.Routes() }
