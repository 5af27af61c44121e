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

type tenantRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListTenants returns the slugs of all tenants in an application.
func (h *Handler) ListTenants(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	tenants, err := h.Store.ListTenants(c.Request().Context(), c.Param("app_slug"))
	if err != nil {
		return writeError(c, err)
	}

	slugs := make([]string, 0, len(tenants))
	for _, tenant := range tenants {
		slugs = append(slugs, tenant.Slug)
	}
	return c.JSON(http.StatusOK, slugs)
}

// CreateTenant creates a tenant inside an application.
func (h *Handler) CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "create")

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tenant, err := h.Store.CreateTenant(c.Request().Context(), c.Param("app_slug"), store.TenantData{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Tenant created",
		zap.String("app", c.Param("app_slug")),
		zap.String("slug", tenant.Slug))
	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant returns one tenant by its slug path.
func (h *Handler) GetTenant(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	tenant, err := h.Store.GetTenant(c.Request().Context(), c.Param("app_slug"), c.Param("tn_slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant edits an existing tenant.
func (h *Handler) UpdateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "update")

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	tenant, err := h.Store.UpdateTenant(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), store.TenantData{
			Slug:        req.Slug,
			Title:       req.Title,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Tenant updated",
		zap.String("app", c.Param("app_slug")),
		zap.String("slug", c.Param("tn_slug")),
		zap.String("new_slug", tenant.Slug))
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant removes a tenant and everything it owns.
func (h *Handler) DeleteTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("tenant", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.DeleteTenant(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug")); err != nil {
		return writeError(c, err)
	}

	log.Info("Tenant deleted",
		zap.String("app", c.Param("app_slug")),
		zap.String("slug", c.Param("tn_slug")))
	return c.NoContent(http.StatusNoContent)
}
