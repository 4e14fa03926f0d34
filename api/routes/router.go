package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabacweb/tabac-backend/api/controllers"
	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/internal/auth"
	"github.com/tabacweb/tabac-backend/internal/dashboard"
	"github.com/tabacweb/tabac-backend/internal/notifications"
	"github.com/tabacweb/tabac-backend/internal/orders"
	product "github.com/tabacweb/tabac-backend/internal/products"
	"github.com/tabacweb/tabac-backend/internal/realtime"
	"github.com/tabacweb/tabac-backend/internal/reservations"
	"github.com/tabacweb/tabac-backend/internal/users"
	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/logger"
	"github.com/tabacweb/tabac-backend/pkg/metrics"
	"github.com/tabacweb/tabac-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        *redis.Client
	HTTPMetrics  *metrics.HTTPMetrics
	Hub          *realtime.Hub
	Auth         auth.Service
	Register     auth.RegisterService
	Users        users.Service
	Products     product.Service
	Orders       orders.Service
	Reservations reservations.Service
	Notify       notifications.Service
	Dashboard    dashboard.Service
}

// NewRouter wires the full HTTP surface.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.Middleware())
		r.Method(http.MethodGet, "/metrics", p.HTTPMetrics.Handler())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(p.DB, p.Redis, logg))
	})

	r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/ws", controllers.Websocket(p.Hub))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.Auth, logg))
			r.With(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(logg, "admin"),
			).Post("/register", controllers.Register(p.Register, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.Me(p.Users, logg))
		})

		// Public surface: menu browsing, guest checkout, order tracking,
		// and table booking.
		r.Get("/products", controllers.ListMenu(p.Products, logg))
		r.Get("/products/{productId}", controllers.GetProduct(p.Products, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Post("/orders", controllers.Checkout(p.Orders, logg))
		r.Get("/orders/track/{number}", controllers.TrackOrder(p.Orders, logg))
		r.Post("/reservations", controllers.CreateReservation(p.Reservations, logg))
		r.Get("/reservations/availability", controllers.GetAvailability(p.Reservations, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/orders/mine", controllers.ListMyOrders(p.Orders, logg))
			r.Put("/profile", controllers.UpdateProfile(p.Users, logg))
			r.Put("/profile/password", controllers.ChangePassword(p.Users, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(p.Notify, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(p.Notify, logg))
				r.Put("/{notificationId}/read", controllers.MarkNotificationRead(p.Notify, logg))
				r.Put("/read-all", controllers.MarkAllNotificationsRead(p.Notify, logg))
				r.With(middleware.RequireRole(logg, "admin")).Delete("/expired", controllers.DeleteExpiredNotifications(p.Notify, logg))
			})

			// Staff surface: catalog management, the order board, and the
			// booking board.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, "admin", "cashier"))

				r.Route("/catalog", func(r chi.Router) {
					r.Get("/", controllers.ListCatalog(p.Products, logg))
					r.Post("/", controllers.CreateProduct(p.Products, logg))
					r.Put("/{productId}", controllers.UpdateProduct(p.Products, logg))
					r.Patch("/{productId}/availability", controllers.ToggleProductAvailability(p.Products, logg))
					r.Delete("/{productId}", controllers.DeleteProduct(p.Products, logg))
				})

				r.Route("/orders/admin", func(r chi.Router) {
					r.Get("/", controllers.ListOrders(p.Orders, logg))
					r.Get("/{orderId}", controllers.GetOrder(p.Orders, logg))
					r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(p.Orders, logg))
				})

				r.Route("/reservations", func(r chi.Router) {
					r.Get("/", controllers.ListReservations(p.Reservations, logg))
					r.Get("/{reservationId}", controllers.GetReservation(p.Reservations, logg))
					r.Put("/{reservationId}", controllers.UpdateReservation(p.Reservations, logg))
					r.Delete("/{reservationId}", controllers.CancelReservation(p.Reservations, logg))
				})
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.With(middleware.RequireRole(logg, "admin", "cashier")).
			Get("/dashboard", controllers.DashboardSummary(p.Dashboard, logg))
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "admin"))
			r.Get("/", controllers.ListUsers(p.Users, logg))
			r.Get("/{userId}", controllers.GetUser(p.Users, logg))
			r.Put("/{userId}", controllers.UpdateUser(p.Users, logg))
			r.Delete("/{userId}", controllers.DeleteUser(p.Users, logg))
		})
	})

	return r
}
