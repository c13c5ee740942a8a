package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paolomureddu/agrikmzero-backend/api/controllers"
	"github.com/paolomureddu/agrikmzero-backend/api/middleware"
	authsvc "github.com/paolomureddu/agrikmzero-backend/internal/auth"
	cartsvc "github.com/paolomureddu/agrikmzero-backend/internal/cart"
	messagesvc "github.com/paolomureddu/agrikmzero-backend/internal/messages"
	ordersvc "github.com/paolomureddu/agrikmzero-backend/internal/orders"
	productsvc "github.com/paolomureddu/agrikmzero-backend/internal/products"
	profilesvc "github.com/paolomureddu/agrikmzero-backend/internal/profiles"
	reviewsvc "github.com/paolomureddu/agrikmzero-backend/internal/reviews"
	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	"github.com/paolomureddu/agrikmzero-backend/pkg/auth/session"
	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
	redisclient "github.com/paolomureddu/agrikmzero-backend/pkg/redis"
	"github.com/paolomureddu/agrikmzero-backend/pkg/storage/gcs"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB      db.Pinger
	Redis   *redisclient.Client
	Storage gcs.Pinger

	Sessions session.AccessSessionChecker
	Metrics  prometheus.Gatherer

	Auth     authsvc.Service
	Profiles profilesvc.Service
	Products productsvc.Service
	Cart     cartsvc.Service
	Orders   ordersvc.Service
	Messages messagesvc.Service
	Reviews  reviewsvc.Service
	Users    *users.Repository
}

// NewRouter assembles the full HTTP surface of the marketplace API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.Storage))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.Get("/verify", controllers.AuthVerifyEmail(deps.Auth, logg))
		r.Post("/password/forgot", controllers.AuthForgotPassword(deps.Auth, logg))
		r.Post("/password/reset", controllers.AuthResetPassword(deps.Auth, logg))
	})

	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Get("/provinces", controllers.LocationProvinces())
		r.Get("/provinces/{province}/cities", controllers.LocationComuni(logg))
	})

	r.Route("/api/v1/farmers", func(r chi.Router) {
		r.Get("/{slug}", controllers.FarmerStorefront(deps.Products, logg))
		r.Get("/{slug}/products", controllers.FarmerProducts(deps.Products, logg))
		r.Get("/{slug}/reviews", controllers.FarmerReviews(deps.Users, deps.Reviews, logg))
	})

	// cart and guest checkout share one session cookie, available to both
	// anonymous visitors and logged-in buyers
	r.Group(func(r chi.Router) {
		r.Use(
			middleware.CartSession(cfg.Cart.TTL, cfg.App.IsProd()),
			middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg),
		)

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/add/{productId}", controllers.CartAdd(deps.Cart, logg))
			r.Post("/update/{productId}", controllers.CartUpdateQty(deps.Cart, logg))
			r.Post("/remove/{productId}", controllers.CartRemove(deps.Cart, logg))
			r.Post("/clear/{sellerId}", controllers.CartClearSeller(deps.Cart, logg))
			r.Post("/clear", controllers.CartClear(deps.Cart, logg))
		})

		r.Post("/api/v1/orders/create/{sellerId}", controllers.OrderCreate(deps.Orders, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileMe(deps.Profiles, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profiles, logg))
			r.Post("/logo", controllers.ProfileUploadLogo(deps.Profiles, cfg.GCS.MaxUploadMB, logg))
			r.Post("/cover", controllers.ProfileUploadCover(deps.Profiles, cfg.GCS.MaxUploadMB, logg))
		})

		r.Route("/api/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ProductListMine(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
			r.Post("/{productId}/image", controllers.ProductUploadImage(deps.Products, cfg.GCS.MaxUploadMB, logg))
		})

		// registered flat; /api/v1/orders/create lives in the cart-session
		// group above and a mounted subrouter would shadow it
		r.Get("/api/v1/orders", controllers.OrderList(deps.Orders, logg))
		r.Post("/api/v1/orders/bulk", controllers.OrderBulkTransition(deps.Orders, logg))
		r.Get("/api/v1/orders/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/accept", controllers.OrderDecision(deps.Orders, enums.OrderActionAccept, logg))
		r.Post("/api/v1/orders/{orderId}/reject", controllers.OrderDecision(deps.Orders, enums.OrderActionReject, logg))
		r.Post("/api/v1/orders/{orderId}/complete", controllers.OrderComplete(deps.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/reply", controllers.OrderReply(deps.Orders, logg))

		r.Route("/api/v1/messages", func(r chi.Router) {
			r.Get("/", controllers.MessageConversations(deps.Messages, logg))
			r.Get("/unread", controllers.MessageUnreadCount(deps.Messages, logg))
			r.Get("/{userId}", controllers.MessageOpenConversation(deps.Messages, logg))
			r.Post("/{userId}", controllers.MessageSend(deps.Messages, logg))
		})

		r.Post("/api/v1/reviews/{farmerId}", controllers.ReviewSubmit(deps.Reviews, logg))

		r.Get("/api/ping", controllers.PrivatePing())
	})

	return r
}
