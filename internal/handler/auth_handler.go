package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

// Token handles the login form and returns a signed access token. The
// optional space-separated scope field narrows the granted scopes; left
// empty, the token carries the user's full live permission set.
func (h *Handler) Token(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	username := c.FormValue("username")
	password := c.FormValue("password")
	scope := strings.Fields(c.FormValue("scope"))

	token, granted, err := h.Auth.Login(c.Request().Context(), username, password, scope)
	if err != nil {
		return writeError(c, err)
	}

	log.Info("User logged in",
		zap.String("user", username),
		zap.Int("scopes", len(granted)))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}
