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

type permissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListPermissions returns the names of all permissions in a tenant.
func (h *Handler) ListPermissions(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	perms, err := h.Store.ListPermissions(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"))
	if err != nil {
		return writeError(c, err)
	}

	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		names = append(names, perm.Name)
	}
	return c.JSON(http.StatusOK, names)
}

// CreatePermission creates a permission inside a tenant.
func (h *Handler) CreatePermission(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("permission", "create")

	var req permissionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	perm, err := h.Store.CreatePermission(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), store.PermissionData{
			Name:        req.Name,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Permission created",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", perm.Name))
	return c.JSON(http.StatusCreated, perm)
}

// GetPermission returns one permission by name through the slug path.
func (h *Handler) GetPermission(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	perm, err := h.Store.GetPermission(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, perm)
}

// UpdatePermission edits an existing permission.
func (h *Handler) UpdatePermission(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("permission", "update")

	var req permissionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	perm, err := h.Store.UpdatePermission(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"), store.PermissionData{
			Name:        req.Name,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Permission updated",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", perm.Name))
	return c.JSON(http.StatusOK, perm)
}

// DeletePermission removes a permission and its role associations.
func (h *Handler) DeletePermission(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("permission", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.DeletePermission(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name")); err != nil {
		return writeError(c, err)
	}

	log.Info("Permission deleted",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", c.Param("name")))
	return c.NoContent(http.StatusNoContent)
}
