package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adminboard/dashboard-core/internal/api/handler"
	"github.com/adminboard/dashboard-core/internal/api/middleware"
	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/service"
	"github.com/adminboard/dashboard-core/internal/core/session"
	backendclient "github.com/adminboard/dashboard-core/internal/infrastructure/backend"
	"github.com/adminboard/dashboard-core/internal/infrastructure/config"
	mongodb "github.com/adminboard/dashboard-core/internal/infrastructure/db/mongo"
	redisdb "github.com/adminboard/dashboard-core/internal/infrastructure/db/redis"
	"github.com/adminboard/dashboard-core/pkg/logger"
)

const storePrefix = "dashboard"

// NewRouter builds the Echo instance with the session core fully wired:
// Redis-backed session store, the event bus, the backend client and all
// route handlers. When db is non-nil the audit trail lives in MongoDB,
// otherwise it shares the Redis instance.
func NewRouter(cfg *config.Config, rdb *redis.Client, db *mongo.Database, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dashboard"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Stores ---
	sessions := session.NewStore(redisdb.NewKV(rdb, storePrefix), logger.Component(log, "session"))
	events := bus.New(logger.Component(log, "bus"))

	var audit ports.AuditLog
	if db != nil {
		audit = mongodb.NewAuditLog(db)
	} else {
		audit = redisdb.NewAuditLog(rdb, storePrefix)
	}

	// --- Backend client ---
	// A 401 from the backend means the token died server-side; drop the
	// local session so the next guard resolution lands on the login page.
	remote := backendclient.NewClient(cfg.Backend.BaseURL,
		func(ctx context.Context) string { return sessions.Token(ctx) },
		logger.Component(log, "backend"),
		backendclient.WithTimeout(cfg.Backend.Timeout),
		backendclient.WithUnauthorizedHook(func(ctx context.Context) { sessions.Clear(ctx) }),
	)

	// --- Services ---
	authService := service.NewAuthService(remote, sessions, events, log)
	profileService := service.NewProfileService(remote, sessions, audit, events, log)
	adminService := service.NewAdminService(remote, sessions, audit, events, log)

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(authService, sessions)
	profileHandler := handler.NewProfileHandler(profileService)
	adminHandler := handler.NewAdminHandler(adminService)
	logsHandler := handler.NewLogsHandler(adminService)

	requireSession := middleware.RequireSession(sessions)
	usersGuard := middleware.Guard(authService, domain.CapUsers, cfg.UnauthorizedPath, log)
	reportsGuard := middleware.Guard(authService, domain.CapReports, cfg.UnauthorizedPath, log)

	// --- Session routes ---
	// GET /session skips RequireSession: Current bootstraps from the stored
	// token when the user record is cold, which the gate would short-circuit.
	e.POST("/session", sessionHandler.Login)
	e.DELETE("/session", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Current)
	e.POST("/session/refresh", sessionHandler.Refresh, requireSession)

	// --- Profile routes ---
	e.PUT("/profile", profileHandler.Update, requireSession)
	e.PUT("/profile/avatar", profileHandler.SetAvatar, requireSession)
	e.DELETE("/profile/avatar", profileHandler.ClearAvatar, requireSession)
	e.GET("/avatars/:id", profileHandler.Avatar, requireSession)

	// --- User management routes (users capability) ---
	users := e.Group("/users", requireSession, usersGuard)
	users.GET("", adminHandler.Roster)
	users.POST("", adminHandler.CreateUser)
	users.PATCH("/:id/role", adminHandler.ChangeRole)
	users.PATCH("/:id/permissions", adminHandler.TogglePermission)

	// --- Audit log routes (reports capability) ---
	logs := e.Group("/logs", requireSession, reportsGuard)
	logs.GET("", logsHandler.List)
	logs.DELETE("", logsHandler.Clear)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(rdb, db)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
