package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/controllers"
	webhookcontrollers "github.com/Aniefiokidi/MAKEITSELL-sub000/api/controllers/webhooks"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/middleware"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/notifications"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/settlement"
	subsvc "github.com/Aniefiokidi/MAKEITSELL-sub000/internal/subscriptions"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/redis"
)

// NewRouter wires the billing core's HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	engine *subsvc.Engine,
	vendors subsvc.VendorRepository,
	settlementService *settlement.Service,
	notificationsService *notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentEvent(engine, logg))
	})

	r.Route("/api/v1/vendors/{vendorID}", func(r chi.Router) {
		r.Get("/subscription", controllers.SubscriptionStandingGet(vendors, logg))
		r.Get("/sales-summary", controllers.SalesSummaryGet(settlementService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(notificationsService, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.NotificationMarkRead(notificationsService, logg))
		})
	})

	return r
}
