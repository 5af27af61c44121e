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

type applicationRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListApplications returns the slugs of all applications.
func (h *Handler) ListApplications(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	apps, err := h.Store.ListApplications(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	slugs := make([]string, 0, len(apps))
	for _, app := range apps {
		slugs = append(slugs, app.Slug)
	}
	return c.JSON(http.StatusOK, slugs)
}

// CreateApplication creates a new application.
func (h *Handler) CreateApplication(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("application", "create")

	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	app, err := h.Store.CreateApplication(c.Request().Context(), store.ApplicationData{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Application created", zap.String("slug", app.Slug))
	return c.JSON(http.StatusCreated, app)
}

// GetApplication returns one application by slug.
func (h *Handler) GetApplication(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	app, err := h.Store.GetApplication(c.Request().Context(), c.Param("app_slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

// UpdateApplication edits an existing application.
func (h *Handler) UpdateApplication(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("application", "update")

	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	app, err := h.Store.UpdateApplication(c.Request().Context(), c.Param("app_slug"), store.ApplicationData{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Application updated",
		zap.String("slug", c.Param("app_slug")),
		zap.String("new_slug", app.Slug))
	return c.JSON(http.StatusOK, app)
}

// DeleteApplication removes an application and all its descendants.
func (h *Handler) DeleteApplication(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("application", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.DeleteApplication(c.Request().Context(), c.Param("app_slug")); err != nil {
		return writeError(c, err)
	}

	log.Info("Application deleted", zap.String("slug", c.Param("app_slug")))
	return c.NoContent(http.StatusNoContent)
}
