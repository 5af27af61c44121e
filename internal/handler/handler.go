// Package handler contains the HTTP surface: thin CRUD wrappers around the
// store plus the token endpoint. All business rules live in the store and
// authz packages; handlers bind requests, call through and map errors.
package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rbac-service/internal/apperr"
	"rbac-service/internal/authz"
	"rbac-service/internal/store"
	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

// Handler bundles the dependencies of the HTTP endpoints.
type Handler struct {
	Store    *store.Store
	Auth     *authz.Authenticator
	Verifier authz.CredentialVerifier
	Catalog  authz.Catalog
	Version  string
}

// New creates a handler set. The verifier hashes client-supplied plaintext
// passwords before they reach the store.
func New(st *store.Store, auth *authz.Authenticator, verifier authz.CredentialVerifier, catalog authz.Catalog, version string) *Handler {
	return &Handler{
		Store:    st,
		Auth:     auth,
		Verifier: verifier,
		Catalog:  catalog,
		Version:  version,
	}
}

// writeError renders an error response. Expected failures carry their stable
// code to the caller; anything else is logged in full and surfaced as an
// opaque internal error with a correlation id.
func writeError(c echo.Context, err error) error {
	if appErr, ok := apperr.AsError(err); ok && appErr.Kind != apperr.Internal {
		prometheus.RecordError(appErr.Code)
		return c.JSON(appErr.Status(), appErr)
	}

	traceID := uuid.New().String()
	logger.FromEcho(c).Error("Unexpected failure",
		zap.Error(err),
		zap.String("trace_id", traceID))
	prometheus.RecordError("internal-error")
	appErr := apperr.InternalError(traceID)
	return c.JSON(appErr.Status(), appErr)
}
