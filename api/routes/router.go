package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/greengrocer-web/api/controllers"
	admincontrollers "github.com/angelmondragon/greengrocer-web/api/controllers/admin"
	"github.com/angelmondragon/greengrocer-web/api/middleware"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/chat"
	"github.com/angelmondragon/greengrocer-web/internal/checkout"
	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
	"github.com/angelmondragon/greengrocer-web/internal/dashboard"
	"github.com/angelmondragon/greengrocer-web/internal/orders"
	"github.com/angelmondragon/greengrocer-web/internal/products"
	"github.com/angelmondragon/greengrocer-web/internal/reviews"
	"github.com/angelmondragon/greengrocer-web/internal/users"
	"github.com/angelmondragon/greengrocer-web/pkg/config"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// RateLimiter counts requests in fixed windows.
type RateLimiter interface {
	CountHit(ctx context.Context, counter string, window time.Duration) (int64, error)
}

// Deps is everything the storefront HTTP surface needs. Nil services answer
// with an internal error; a nil RateLimiter disables throttling.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	State       clientstate.Store
	Locker      *cart.Locker
	RateLimiter RateLimiter
	Health      map[string]controllers.Pinger
	Metrics     http.Handler

	Auth      auth.Service
	Products  products.Service
	Orders    orders.Service
	Reviews   reviews.Service
	Users     users.Service
	Dashboard dashboard.Service
	Checkout  *checkout.Service
	Chat      *chat.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	locker := d.Locker
	if locker == nil {
		locker = cart.NewLocker()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Health))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	limiter := d.RateLimiter
	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit, cfg.RateLimit.LoginIdentifierLimit)
	registerPolicy := middleware.NewRateLimitPolicy("register", cfg.RateLimit.RegisterWindow, cfg.RateLimit.RegisterIPLimit, cfg.RateLimit.RegisterIdentifierLimit)
	chatPolicy := middleware.NewDeviceRateLimitPolicy("chat", cfg.RateLimit.ChatWindow, cfg.RateLimit.ChatDeviceLimit)

	requireAuth := middleware.RequireAuth(logg)

	// Everything below carries a browser identity and auth session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Browser(browser.Options{
			Store:        d.State,
			TTLs:         browser.TTLs{Device: cfg.State.DeviceTTL, Session: cfg.State.SessionTTL},
			SecureCookie: cfg.State.SecureCookie,
			PublicOrigin: cfg.App.PublicOrigin,
		}, logg))

		r.Get(checkout.PaymentRedirectPath, controllers.PaymentRedirectPage(logg))

		r.Route("/api", func(r chi.Router) {
			r.Get("/session", controllers.SessionState())

			r.Route("/auth", func(r chi.Router) {
				r.With(middleware.RateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
				r.With(middleware.RateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
				r.Post("/logout", controllers.AuthLogout(logg))
				r.With(requireAuth).Get("/me", controllers.AuthMe(d.Auth, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(locker, logg))
				r.Delete("/", controllers.CartClear(locker, logg))
				r.Post("/items", controllers.CartAddItem(d.Products, locker, logg))
				r.Put("/items/{productID}", controllers.CartUpdateItem(locker, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(locker, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ProductList(d.Products, logg))
				r.Get("/{id}", controllers.ProductDetail(d.Products, logg))
				r.Get("/{id}/reviews", controllers.ProductReviews(d.Reviews, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/reviews", controllers.ReviewCreate(d.Reviews, logg))
				r.Get("/reviews/mine", controllers.ReviewMine(d.Reviews, logg))

				r.Get("/orders", controllers.OrderList(d.Orders, logg))
				r.Get("/orders/{id}", controllers.OrderDetail(d.Orders, logg))

				r.Get("/checkout", controllers.CheckoutView(d.Checkout, locker, logg))
				r.Post("/checkout", controllers.CheckoutSubmit(d.Checkout, locker, logg))

				r.Get("/payment/history", controllers.PaymentHistory(d.Checkout, logg))

				r.Route("/chat", func(r chi.Router) {
					r.Get("/", controllers.ChatTranscript(d.Chat, logg))
					r.Post("/session", controllers.ChatOpen(d.Chat, logg))
					r.Delete("/session", controllers.ChatReset(d.Chat, logg))
					r.With(middleware.RateLimit(chatPolicy, limiter, logg)).Post("/messages", controllers.ChatSend(d.Chat, logg))
					r.Post("/cart", controllers.ChatAddToCart(d.Chat, locker, logg))
				})
			})

			// The result page decides for itself what a missing session means.
			r.Get("/payment/result", controllers.PaymentResult(d.Checkout, logg))
			r.Get("/payment/cancel", controllers.PaymentCancel(d.Checkout, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/dashboard/public-stats", admincontrollers.PublicStats(d.Dashboard, logg))

				r.Group(func(r chi.Router) {
					r.Use(requireAuth, middleware.RequireAdmin(logg))

					r.Get("/users", admincontrollers.UserList(d.Users, logg))
					r.Get("/users/{id}", admincontrollers.UserDetail(d.Users, logg))
					r.Put("/users/{id}", admincontrollers.UserUpdate(d.Users, logg))
					r.Delete("/users/{id}", admincontrollers.UserDelete(d.Users, logg))

					r.Get("/products", admincontrollers.ProductList(d.Products, logg))
					r.Post("/products", admincontrollers.ProductCreate(d.Products, logg))
					r.Get("/products/{id}", admincontrollers.ProductDetail(d.Products, logg))
					r.Put("/products/{id}", admincontrollers.ProductUpdate(d.Products, logg))
					r.Delete("/products/{id}", admincontrollers.ProductDelete(d.Products, logg))

					r.Get("/orders", admincontrollers.OrderList(d.Orders, logg))
					r.Get("/orders/{id}", admincontrollers.OrderDetail(d.Orders, logg))
					r.Put("/orders/{id}", admincontrollers.OrderUpdate(d.Orders, logg))

					r.Get("/dashboard/stats", admincontrollers.Stats(d.Dashboard, logg))
					r.Get("/dashboard/user-stats", admincontrollers.UserStats(d.Dashboard, logg))
					r.Get("/dashboard/product-stats", admincontrollers.ProductStats(d.Dashboard, logg))
					r.Get("/dashboard/order-stats", admincontrollers.OrderStats(d.Dashboard, logg))
					r.Get("/dashboard/recent-activity", admincontrollers.RecentActivity(d.Dashboard, logg))
					r.Get("/dashboard/sales-analytics", admincontrollers.SalesAnalytics(d.Dashboard, logg))
				})
			})
		})
	})

	return r
}
