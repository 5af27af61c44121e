package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rbac-service/internal/apperr"
	"rbac-service/internal/store"
	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListRoles returns the names of all roles in a tenant.
func (h *Handler) ListRoles(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	roles, err := h.Store.ListRoles(c.Request().Context(), c.Param("app_slug"), c.Param("tn_slug"))
	if err != nil {
		return writeError(c, err)
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return c.JSON(http.StatusOK, names)
}

// CreateRole creates a role inside a tenant.
func (h *Handler) CreateRole(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("role", "create")

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	role, err := h.Store.CreateRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), store.RoleData{
			Name:        req.Name,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Role created",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", role.Name))
	return c.JSON(http.StatusCreated, role)
}

// GetRole returns one role by name through the slug path.
func (h *Handler) GetRole(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	role, err := h.Store.GetRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// UpdateRole edits an existing role.
func (h *Handler) UpdateRole(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("role", "update")

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	role, err := h.Store.UpdateRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"), store.RoleData{
			Name:        req.Name,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Role updated",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", role.Name))
	return c.JSON(http.StatusOK, role)
}

// DeleteRole removes a role and its associations.
func (h *Handler) DeleteRole(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("role", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.DeleteRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name")); err != nil {
		return writeError(c, err)
	}

	log.Info("Role deleted",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", c.Param("name")))
	return c.NoContent(http.StatusNoContent)
}

// GetRolePermissions returns the permissions assigned to a role.
func (h *Handler) GetRolePermissions(c echo.Context) error {
	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	perms, err := h.Store.RolePermissions(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), roleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, perms)
}

// AddRolePermission assigns a permission to a role. Assigning a permission
// the role already has succeeds without changing anything.
func (h *Handler) AddRolePermission(c echo.Context) error {
	prometheus.RecordEntityOperation("role", "assign-permission")

	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}
	permID, err := paramUint(c, "perm_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.Store.AddPermissionToRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), roleID, permID); err != nil {
		return writeError(c, err)
	}

	perms, err := h.Store.RolePermissions(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), roleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, perms)
}

// RemoveRolePermission removes a permission assignment from a role.
func (h *Handler) RemoveRolePermission(c echo.Context) error {
	prometheus.RecordEntityOperation("role", "unassign-permission")

	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}
	permID, err := paramUint(c, "perm_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.RemovePermissionFromRole(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), roleID, permID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceRolePermissions replaces the full permission set of a role.
func (h *Handler) ReplaceRolePermissions(c echo.Context) error {
	prometheus.RecordEntityOperation("role", "replace-permissions")

	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}

	var permIDs []uint
	if err := c.Bind(&permIDs); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	perms, err := h.Store.ReplaceRolePermissions(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), roleID, permIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, perms)
}
