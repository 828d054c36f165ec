package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/config"
	"github.com/homa/homa/internal/domain/admin"
	"github.com/homa/homa/internal/domain/clinical"
	"github.com/homa/homa/internal/domain/identity"
	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/domain/scheduling"
	"github.com/homa/homa/internal/domain/search"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/internal/platform/db"
	"github.com/homa/homa/internal/platform/middleware"
)

// services holds every domain service, wired to Postgres.
type services struct {
	identity   *identity.Service
	profile    *profile.Service
	admin      *admin.Service
	scheduling *scheduling.Service
	clinical   *clinical.Service
	search     *search.Service

	departments admin.DepartmentRepository
	tx          db.Transactor
}

func newServices(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *services {
	tx := db.NewTransactor(pool)

	users := identity.NewUserRepoPG(pool)
	patients := profile.NewPatientRepoPG(pool)
	doctors := profile.NewDoctorRepoPG(pool)
	departments := admin.NewDepartmentRepo(pool)
	appointments := scheduling.NewAppointmentRepoPG(pool)
	treatments := clinical.NewTreatmentRepoPG(pool)

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)

	return &services{
		identity: identity.NewService(users, patients, tx, tokens, cfg.BcryptCost,
			logger.With().Str("component", "identity").Logger()),
		profile: profile.NewService(patients, doctors),
		admin: admin.NewService(departments, admin.NewStatsRepo(pool), users, doctors, tx, cfg.BcryptCost,
			logger.With().Str("component", "admin").Logger()),
		scheduling: scheduling.NewService(appointments, doctors,
			logger.With().Str("component", "scheduling").Logger()),
		clinical: clinical.NewService(treatments, appointments, patients, tx,
			logger.With().Str("component", "clinical").Logger()),
		search:      search.NewService(search.NewRepoPG(pool)),
		departments: departments,
		tx:          tx,
	}
}

// newServer builds the echo instance with the middleware chain and every
// route registered.
func newServer(cfg *config.Config, pool *pgxpool.Pool, svcs *services,
	revocations *auth.TokenRevocationStore, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	metrics := middleware.NewMetrics()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		SigningKey:  []byte(cfg.JWTSecret),
		Revocations: revocations,
		Resolver:    svcs.identity,
		Skipper:     auth.AuthSkipper,
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.AuthRateLimitRPS,
		BurstSize:         cfg.AuthRateLimitBurst,
		Skipper:           func(c echo.Context) bool { return !isCredentialRoute(c) },
	}))
	e.Use(middleware.Audit(logger.With().Str("component", "audit").Logger(), auditRoutes))

	// Operational endpoints
	e.GET("/health", db.LivenessHandler())
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", metrics.Handler())

	// Every application route runs in a request-scoped transaction.
	root := e.Group("", db.UnitOfWork(pool, logger))
	api := e.Group("/api/v1",
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}),
		db.UnitOfWork(pool, logger),
	)

	identity.NewHandler(svcs.identity, revocations).RegisterRoutes(root)
	profile.NewHandler(svcs.profile).RegisterRoutes(root, api)
	admin.NewHandler(svcs.admin).RegisterRoutes(root, api)
	scheduling.NewHandler(svcs.scheduling).RegisterRoutes(root, api)
	clinical.NewHandler(svcs.clinical).RegisterRoutes(root)
	search.NewHandler(svcs.search).RegisterRoutes(root)

	return e
}

// isCredentialRoute matches the endpoints that accept a password.
func isCredentialRoute(c echo.Context) bool {
	if c.Request().Method != http.MethodPost {
		return false
	}
	return c.Path() == "/login" || c.Path() == "/register"
}

// auditRoutes lists the routes that expose patient records or change
// appointments.
var auditRoutes = middleware.AuditRoutes{
	"/doctor/patient/:id/history":       {Resource: "patient_history", PatientParam: "id"},
	"/patient/history":                  {Resource: "patient_history"},
	"/doctor/appointment/:id/treatment": {Resource: "treatment"},
	"/admin/treatments":                 {Resource: "treatment"},
	"/patient/profile":                  {Resource: "patient_profile"},
	"/admin/patients":                   {Resource: "patient_profile"},
	"/patient/book/:doctorId":           {Resource: "appointment"},
	"/patient/cancel/:appointmentId":    {Resource: "appointment"},
	"/doctor/appointment/:id/status":    {Resource: "appointment"},
	"/api/v1/appointments/:id":          {Resource: "appointment"},
}
