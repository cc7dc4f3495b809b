package transport

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/robot"
	"github.com/tanicerdas/seedbot-console/internal/sensor"
	"github.com/tanicerdas/seedbot-console/internal/session"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/model"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Sessions   *session.Manager
	Backend    *backend.Client
	Controller *robot.Controller
	Poller     *robot.Poller
	Estimator  *sensor.Estimator
	State      *state.Store
	Readiness  observability.ReadinessChecks
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints bypass the
// session middleware.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(Recovery(deps.Logger))
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	if deps.Config.Observability.Tracing.Enabled {
		r.Use(observability.TracingMiddleware)
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}

	// Operational endpoints.
	r.Get("/health", observability.HandleHealth())
	r.Get("/ready", observability.HandleReady(deps.Readiness))
	if deps.Config.Observability.Metrics.Enabled {
		r.Method("GET", deps.Config.Observability.Metrics.Path, observability.Handler())
	}

	r.Route("/ui", func(r chi.Router) {
		r.Use(SessionLoader(deps.Sessions))
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging(deps.Logger))

		// Public routes. Navigation resolve serves logged-out visitors
		// too: it decides where an arbitrary fragment lands.
		r.Post("/auth/login", handleLogin(deps.Sessions, deps.Metrics))
		r.Post("/auth/forgot-password", handleForgotPassword(deps.Backend))
		r.Post("/auth/verify-reset-token", handleVerifyResetToken(deps.Backend))
		r.Post("/auth/reset-password", handleResetPassword(deps.Backend))
		r.Get("/session", handleSessionRestore(deps.Sessions, deps.Logger))
		r.Post("/navigation/resolve", handleNavigationResolve(deps.Sessions))
		r.Get("/news", handleNewsList(deps.Backend))
		r.Get("/news/{id}", handleNewsGet(deps.Backend))

		// Authenticated routes shared by both roles.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Post("/session/logout", handleLogout(deps.Sessions))
			r.Put("/password", handleChangePassword(deps.Backend))
			r.Get("/navigation/menus", handleNavigationMenus())
		})

		// Farmer dashboard routes.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession)
			r.Use(RequireRole(model.RoleFarmer))

			r.Get("/farmer/dashboard", handleDashboard(deps.Controller, deps.State, deps.Estimator))
			r.Put("/farmer/sensor-data", handleSensorDataUpdate(deps.Backend, deps.State))
			r.Get("/farmer/thresholds", handleThresholdsGet(deps.Backend, deps.State))
			r.Put("/farmer/thresholds", handleThresholdsUpdate(deps.Backend, deps.State))
			r.Get("/farmer/history", handleHistoryList(deps.Backend))
			r.Put("/farmer/history/status", handleHistoryStatusUpdate(deps.Backend))
			r.Get("/farmer/mappings", handleMappingList(deps.Backend))
			r.Post("/farmer/mappings", handleMappingCreate(deps.Backend))
			r.Get("/farmer/mappings/{id}", handleMappingGet(deps.Backend))
			r.Put("/farmer/mappings/{id}", handleMappingUpdate(deps.Backend))
			r.Delete("/farmer/mappings/{id}", handleMappingDelete(deps.Backend))
			r.Get("/farmer/parameters", handleParametersGet(deps.Backend))
			r.Put("/farmer/parameters", handleParametersUpdate(deps.Backend))
			r.Post("/farmer/parameters/reset", handleParametersReset(deps.Backend))

			r.Get("/robot/status", handleRobotStatus(deps.Controller, deps.State))
			r.Post("/robot/commands", handleRobotCommand(deps.Controller, deps.State, deps.Metrics))
			r.Put("/robot/mode", handleRobotMode(deps.Controller, deps.State))
			r.Post("/robot/keys", handleRobotKey(deps.Controller, deps.State))
			r.Post("/views/{view}/activate", handleViewActivate(deps.Poller))
			r.Post("/views/{view}/deactivate", handleViewDeactivate(deps.Poller))
		})

		// Admin dashboard routes.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession)
			r.Use(RequireRole(model.RoleAdmin))

			r.Get("/admin/users", handleUserList(deps.Backend))
			r.Post("/admin/users", handleUserCreate(deps.Backend))
			r.Put("/admin/users/{id}", handleUserUpdate(deps.Backend))
			r.Delete("/admin/users/{id}", handleUserDelete(deps.Backend))
			r.Get("/admin/parameters", handleDefaultParametersGet(deps.Backend))
			r.Put("/admin/parameters", handleDefaultParametersUpdate(deps.Backend))
			r.Post("/admin/news", handleNewsCreate(deps.Backend))
			r.Put("/admin/news/{id}", handleNewsUpdate(deps.Backend))
			r.Delete("/admin/news/{id}", handleNewsDelete(deps.Backend))
		})
	})

	return r
}
