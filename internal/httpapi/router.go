// Package httpapi exposes the marketplace over JSON/HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/logger"
	"github.com/Leganyst/service-marketplace/internal/metrics"
	"github.com/Leganyst/service-marketplace/internal/service"
)

// Services: всё, что нужно обработчикам.
type Services struct {
	Identity      *service.IdentityService
	Profiles      *service.ProfileService
	Categories    *service.CategoryService
	Locations     *service.LocationService
	Catalog       *service.CatalogService
	Bookings      *service.BookingService
	Reviews       *service.ReviewService
	Notifications *service.NotificationService
	Analytics     *service.AnalyticsService
}

type Options struct {
	Logger *slog.Logger
	// Metrics is optional; with nil no /metrics route is mounted.
	Metrics     *metrics.Metrics
	MetricsPath string
	// Health backs GET /healthz.
	Health func(ctx context.Context) error

	MaxBodyBytes       int64
	LoginRatePerMinute int
	LoginBurst         int
}

type API struct {
	svc          Services
	log          *slog.Logger
	health       func(ctx context.Context) error
	maxBodyBytes int64
	loginLimiter *ipLimiter
}

// NewRouter builds the HTTP handler tree.
func NewRouter(svc Services, opts Options) http.Handler {
	a := &API{
		svc:          svc,
		log:          opts.Logger,
		health:       opts.Health,
		maxBodyBytes: opts.MaxBodyBytes,
		loginLimiter: newIPLimiter(opts.LoginRatePerMinute, opts.LoginBurst),
	}
	if a.log == nil {
		a.log = logger.Discard()
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = defaultMaxBodyBytes
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)

	// Статические пути регистрируются раньше шаблонов с {id}.
	a.authRoutes(r)
	a.profileRoutes(r)
	a.categoryRoutes(r)
	a.locationRoutes(r)
	a.serviceRoutes(r)
	a.bookingRoutes(r)
	a.reviewRoutes(r)
	a.notificationRoutes(r)
	a.analyticsRoutes(r)

	return a.withRequestLog(r)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
