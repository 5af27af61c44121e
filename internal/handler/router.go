package handler

import (
	"github.com/labstack/echo/v4"

	"rbac-service/internal/middleware"
)

// RegisterRoutes wires every endpoint, each gated by the permissions it
// requires. Gate.Require validates the names against the catalog, so a route
// asking for a permission outside the catalog fails at startup.
func (h *Handler) RegisterRoutes(e *echo.Echo, gate *middleware.Gate) {
	// Public routes - no authentication required
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", h.MetricsHandler)
	e.POST("/token", h.Token)

	e.GET("/version", h.GetVersion, gate.Require("version:r"))
	e.GET("/stats", h.GetStats, gate.Require("stats:r"))

	// Application management
	mng := e.Group("/mng")
	mng.GET("/", h.ListApplications, gate.Require("apps:r"))
	mng.PUT("/", h.CreateApplication, gate.Require("app:c"))
	mng.GET("/:app_slug", h.GetApplication, gate.Require("app:r"))
	mng.POST("/:app_slug", h.UpdateApplication, gate.Require("app:u"))
	mng.DELETE("/:app_slug", h.DeleteApplication, gate.Require("app:d"))

	// Tenant management
	tenants := e.Group("/tenants/:app_slug")
	tenants.GET("/", h.ListTenants, gate.Require("tenants:r"))
	tenants.PUT("/", h.CreateTenant, gate.Require("tenant:c"))
	tenants.GET("/:tn_slug", h.GetTenant, gate.Require("tenant:r"))
	tenants.POST("/:tn_slug", h.UpdateTenant, gate.Require("tenant:u"))
	tenants.DELETE("/:tn_slug", h.DeleteTenant, gate.Require("tenant:d"))

	// User management
	users := e.Group("/users/:app_slug/:tn_slug")
	users.GET("/", h.ListUsers, gate.Require("users:r"))
	users.PUT("/", h.CreateUser, gate.Require("user:c"))
	users.GET("/:name", h.GetUser, gate.Require("user:r"))
	users.POST("/:name", h.UpdateUser, gate.Require("user:u"))
	users.DELETE("/:name", h.DeleteUser, gate.Require("user:d"))

	userRoles := e.Group("/users/:app_slug/:tn_slug/:user_id/roles")
	userRoles.GET("/", h.GetUserRoles, gate.Require("user:r", "roles:r"))
	userRoles.PUT("/:role_id", h.AddUserRole, gate.Require("user:u", "role:r"))
	userRoles.DELETE("/:role_id", h.RemoveUserRole, gate.Require("user:u", "role:r"))
	userRoles.POST("/", h.ReplaceUserRoles, gate.Require("user:u", "roles:r"))

	// Role management
	roles := e.Group("/roles/:app_slug/:tn_slug")
	roles.GET("/", h.ListRoles, gate.Require("roles:r"))
	roles.PUT("/", h.CreateRole, gate.Require("role:c"))
	roles.GET("/:name", h.GetRole, gate.Require("role:r"))
	roles.POST("/:name", h.UpdateRole, gate.Require("role:u"))
	roles.DELETE("/:name", h.DeleteRole, gate.Require("role:d"))

	rolePerms := e.Group("/roles/:app_slug/:tn_slug/:role_id/permissions")
	rolePerms.GET("/", h.GetRolePermissions, gate.Require("role:r", "perms:r"))
	rolePerms.PUT("/:perm_id", h.AddRolePermission, gate.Require("role:u", "perm:r"))
	rolePerms.DELETE("/:perm_id", h.RemoveRolePermission, gate.Require("role:u", "perm:r"))
	rolePerms.POST("/", h.ReplaceRolePermissions, gate.Require("role:u", "perms:r"))

	// Permission management
	perms := e.Group("/perms/:app_slug/:tn_slug")
	perms.GET("/", h.ListPermissions, gate.Require("perms:r"))
	perms.PUT("/", h.CreatePermission, gate.Require("perm:c"))
	perms.GET("/:name", h.GetPermission, gate.Require("perm:r"))
	perms.POST("/:name", h.UpdatePermission, gate.Require("perm:u"))
	perms.DELETE("/:name", h.DeletePermission, gate.Require("perm:d"))
}
