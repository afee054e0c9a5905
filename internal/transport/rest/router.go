package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfsolutions/access-management/internal/access"
	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/department"
	"github.com/rfsolutions/access-management/internal/observability/metrics"
	"github.com/rfsolutions/access-management/internal/sensor"
	"github.com/rfsolutions/access-management/internal/transport/middleware"
	"github.com/rfsolutions/access-management/internal/transport/swagger"
	"github.com/rfsolutions/access-management/internal/user"
)

// RouterDependencies carries everything the HTTP surface needs. Wired in
// cmd; nothing here owns a connection.
type RouterDependencies struct {
	DB                *sql.DB
	SqlxDB            *sqlx.DB
	Policy            *auth.Policy
	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	DepartmentHandler *department.Handler
	SensorHandler     *sensor.Handler
	AccessHandler     *access.Handler
	OpenAPIPath       string
	CORSOrigins       string
	Logger            *slog.Logger
}

func NewRouter(deps RouterDependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(deps.Logger))
	r.Use(middleware.CORS(deps.CORSOrigins))
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(middleware.LoggingMiddleware(deps.Logger))

	health := NewHealthHandler(deps.DB)
	r.Get("/ping", health.pingHandler)
	r.Get("/health", health.healthCheckHandler)

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/swagger", swagger.Handler())
	if deps.OpenAPIPath != "" {
		r.Get("/openapi.yml", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, deps.OpenAPIPath)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.AuthHandler.Login)
			r.Post("/register", deps.AuthHandler.Register)
			r.Post("/refresh", deps.AuthHandler.RefreshToken)
			r.With(deps.AuthHandler.AuthMiddleware).Post("/logout", deps.AuthHandler.Logout)
			r.Post("/forgot-password", deps.AuthHandler.ForgotPassword)
			r.Post("/reset-password", deps.AuthHandler.ResetPassword)
		})

		// Device-facing routes. Field readers are not token bearers.
		r.Post("/access/events", deps.AccessHandler.Decide)
		r.Get("/iot/data", deps.AccessHandler.Telemetry)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthHandler.AuthMiddleware)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", deps.UserHandler.List)
				r.Post("/", deps.UserHandler.Create)
				r.Get("/{id}", deps.UserHandler.Get)
				r.Put("/{id}", deps.UserHandler.Update)
				r.Delete("/{id}", deps.UserHandler.Delete)
				r.Patch("/{id}/status", deps.UserHandler.UpdateStatus)
				r.With(auth.RequireAdmin(deps.Policy)).Put("/{id}/role", deps.UserHandler.AssignRole)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", deps.DepartmentHandler.List)
				r.With(auth.RequireAdmin(deps.Policy)).Post("/", deps.DepartmentHandler.Create)
				r.Get("/{id}", deps.DepartmentHandler.Get)
				r.Put("/{id}", deps.DepartmentHandler.Update)
				r.Delete("/{id}", deps.DepartmentHandler.Delete)

				r.With(auth.RequireDepartmentMember(deps.Policy, "departmentID")).
					Get("/{departmentID}/sensors", deps.SensorHandler.ListByDepartment)
				r.With(auth.RequireDepartmentAdmin(deps.Policy, "departmentID")).
					Get("/{departmentID}/events", deps.AccessHandler.DepartmentHistory)
			})

			r.Route("/sensors", func(r chi.Router) {
				r.Post("/", deps.SensorHandler.Register)
				r.Get("/{id}", deps.SensorHandler.Get)
				r.With(auth.RequireSensorDepartmentAdmin(deps.SqlxDB, deps.Policy)).
					Patch("/{id}/status", deps.SensorHandler.UpdateStatus)
			})
		})
	})

	return r
}
