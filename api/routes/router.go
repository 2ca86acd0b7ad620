package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zahabi-gold/zahabi-backend/api/controllers"
	"github.com/zahabi-gold/zahabi-backend/api/middleware"
	"github.com/zahabi-gold/zahabi-backend/internal/accounts"
	"github.com/zahabi-gold/zahabi-backend/internal/admin"
	"github.com/zahabi-gold/zahabi-backend/internal/auth"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/notifications"
	"github.com/zahabi-gold/zahabi-backend/internal/pricing"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/auth/session"
	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	"github.com/zahabi-gold/zahabi-backend/pkg/db"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers. The API binary
// builds one of these after constructing its services.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth          auth.Service
	Register      auth.RegisterService
	Accounts      accounts.Service
	Settlement    settlement.Service
	Journal       journal.Service
	Admin         admin.Service
	Pricing       *pricing.Service
	Notifications notifications.Service
}

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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Market data stays public; everything that touches a wallet does not.
	r.Route("/api/v1/gold/price", func(r chi.Router) {
		r.Get("/", controllers.GoldPrice(deps.Pricing, logg))
		r.Get("/history", controllers.GoldPriceHistory(deps.Pricing, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalances(deps.Accounts, logg))
			r.Post("/deposits", controllers.WalletDeposit(deps.Settlement, logg))
			r.Post("/withdrawals", controllers.WalletWithdraw(deps.Settlement, logg))
		})

		r.Route("/gold", func(r chi.Router) {
			r.Post("/buy", controllers.GoldBuy(deps.Settlement, logg))
			r.Post("/sell", controllers.GoldSell(deps.Settlement, logg))
			r.Post("/delivery", controllers.GoldDelivery(deps.Settlement, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(deps.Journal, logg))
			r.Get("/{transactionId}", controllers.GetTransaction(deps.Journal, logg))
			r.Post("/{transactionId}/cancel", controllers.CancelTransaction(deps.Journal, deps.Settlement, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireStaff(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.AdminListTransactions(deps.Journal, logg))
			r.Get("/stats", controllers.AdminTransactionStats(deps.Journal, logg))
			r.Get("/{transactionId}", controllers.AdminGetTransaction(deps.Journal, logg))
			// Per-action permissions are enforced by the admin service.
			r.Post("/{transactionId}/{action}", controllers.AdminReviewTransaction(deps.Admin, logg))
		})
	})

	return r
}
