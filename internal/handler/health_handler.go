package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"rbac-service/internal/model"
	"rbac-service/prometheus"
)

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetVersion reports the service version.
func (h *Handler) GetVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"version": h.Version})
}

// GetStats reports row counts per entity type.
func (h *Handler) GetStats(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	counts := map[string]int64{}
	for name, mdl := range map[string]interface{}{
		"applications": &model.Application{},
		"tenants":      &model.Tenant{},
		"users":        &model.User{},
		"roles":        &model.Role{},
		"permissions":  &model.Permission{},
	} {
		var count int64
		if err := h.Store.DB().WithContext(c.Request().Context()).
			Model(mdl).Count(&count).Error; err != nil {
			return writeError(c, err)
		}
		counts[name] = count
	}

	return c.JSON(http.StatusOK, counts)
}

// MetricsHandler exposes the prometheus metrics.
func (h *Handler) MetricsHandler(c echo.Context) error {
	prometheus.GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
