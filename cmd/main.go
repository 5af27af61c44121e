package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rbac-service/internal/authz"
	"rbac-service/internal/bootstrap"
	"rbac-service/internal/handler"
	"rbac-service/internal/middleware"
	"rbac-service/internal/model"
	"rbac-service/internal/store"
	"rbac-service/pkg/config"
	"rbac-service/pkg/database"
	"rbac-service/pkg/jwtutil"
	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

const version = "0.1.0"

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("rbac-service")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting RBAC service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Application{},
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT utility
	jwtUtil, err := jwtutil.New(&cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize JWT utility", zap.Error(err))
	}

	verifier := authz.BcryptVerifier{}
	catalog := authz.ManagementCatalog()

	// Converge the database to the management baseline. A failure here is
	// fatal: the process must not serve traffic without the baseline.
	passwordHash, err := verifier.Hash(cfg.Bootstrap.SuperPassword)
	if err != nil {
		log.Fatal("Failed to hash bootstrap password", zap.Error(err))
	}
	result, err := bootstrap.EnsureBaseline(context.Background(), db, bootstrap.Params{
		AppSlug:      cfg.Bootstrap.AppSlug,
		TenantSlug:   cfg.Bootstrap.TenantSlug,
		SuperUser:    cfg.Bootstrap.SuperUser,
		PasswordHash: passwordHash,
		SuperRole:    cfg.Bootstrap.SuperRole,
		Perms:        catalog,
	})
	if err != nil {
		log.Fatal("Failed to bootstrap database", zap.Error(err))
	}
	log.Info("Database baseline ensured",
		zap.Bool("new_app", result.AppNew),
		zap.Bool("new_tenant", result.TenantNew),
		zap.Bool("new_user", result.UserNew),
		zap.Bool("new_role", result.RoleNew),
		zap.Bool("new_perms", result.NewPerms))

	// Initialize Prometheus metrics
	prometheus.InitMetrics()

	st := store.New(db)
	auth := authz.New(st, jwtUtil, verifier, cfg.Bootstrap.AppSlug, cfg.Bootstrap.TenantSlug)
	h := handler.New(st, auth, verifier, catalog, version)
	gate := middleware.NewGate(auth, catalog)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	h.RegisterRoutes(e, gate)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
