package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oryclothing/ory-backend/api/controllers"
	"github.com/oryclothing/ory-backend/api/middleware"
	cartsvc "github.com/oryclothing/ory-backend/internal/cart"
	checkoutsvc "github.com/oryclothing/ory-backend/internal/checkout"
	"github.com/oryclothing/ory-backend/internal/inventory"
	newslettersvc "github.com/oryclothing/ory-backend/internal/newsletter"
	"github.com/oryclothing/ory-backend/internal/notifications"
	ordersvc "github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/internal/payments"
	recentsvc "github.com/oryclothing/ory-backend/internal/recent"
	statssvc "github.com/oryclothing/ory-backend/internal/stats"
	"github.com/oryclothing/ory-backend/pkg/config"
	"github.com/oryclothing/ory-backend/pkg/logger"
	"github.com/oryclothing/ory-backend/pkg/metrics"
	"github.com/oryclothing/ory-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	DBPinger    controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics

	Inventory  inventory.Service
	Cart       cartsvc.Service
	Gateway    payments.Gateway
	Orders     ordersvc.Service
	Checkout   checkoutsvc.Service
	Newsletter newslettersvc.Service
	Mailer     notifications.Mailer
	Stats      statssvc.Service
	Recent     recentsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(corsOrigins(cfg.App.CORSOrigins)),
		middleware.SecurityHeaders(),
		middleware.Session(logg),
	)

	paymentPolicy := middleware.NewRateLimitPolicy("payment", cfg.RateLimit.PaymentWindow, cfg.RateLimit.PaymentLimit)
	orderPolicy := middleware.NewRateLimitPolicy("order", cfg.RateLimit.OrderWindow, cfg.RateLimit.OrderLimit)
	newsletterPolicy := middleware.NewRateLimitPolicy("newsletter", cfg.RateLimit.NewsletterWindow, cfg.RateLimit.NewsletterLimit)

	// A typed nil *redis.Client must not reach the middlewares as a non-nil
	// interface value.
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}
	rateLimit := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return middleware.RateLimit(policy, nil, logg)
		}
		return middleware.RateLimit(policy, deps.Redis, logg)
	}

	pingers := map[string]controllers.Pinger{}
	if deps.DBPinger != nil {
		pingers["database"] = deps.DBPinger
	}
	if deps.Redis != nil {
		pingers["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if deps.HTTPMetrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/inventory", controllers.InventoryList(deps.Inventory, logg))
		r.Get("/inventory/{productID}", controllers.InventoryGet(deps.Inventory, logg))

		r.With(rateLimit(paymentPolicy)).
			Post("/payments/create-intent", controllers.PaymentCreateIntent(deps.Gateway, logg))

		r.With(rateLimit(orderPolicy)).
			Post("/orders", controllers.OrderCreate(deps.Orders, logg))
		r.Get("/orders/{orderID}", controllers.OrderGet(deps.Orders, logg))

		r.Get("/emails/{orderID}", controllers.EmailsByOrder(deps.Mailer, logg))

		r.With(rateLimit(newsletterPolicy)).
			Post("/newsletter", controllers.NewsletterSubscribe(deps.Newsletter, logg))
		r.Get("/newsletter", controllers.NewsletterList(deps.Newsletter, logg))

		r.Get("/stats", controllers.StatsOverview(deps.Stats, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireSession(logg))
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Get("/quote", controllers.CartQuote(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items", controllers.CartAdjustItem(deps.Cart, logg))
			r.Delete("/items/{productID}/{size}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Post("/promo", controllers.CartApplyPromo(deps.Cart, logg))
			r.Delete("/promo", controllers.CartRemovePromo(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.RequireSession(logg))
			r.With(rateLimit(orderPolicy)).
				Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
		})

		r.Route("/recently-viewed", func(r chi.Router) {
			r.Use(middleware.RequireSession(logg))
			r.Get("/", controllers.RecentList(deps.Recent, logg))
			r.Post("/", controllers.RecentRecord(deps.Recent, logg))
		})
	})

	return r
}

func corsOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
