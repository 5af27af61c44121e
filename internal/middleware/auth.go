package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rbac-service/internal/apperr"
	"rbac-service/internal/authz"
	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

const identityKey = "identity"

// Gate builds per-route authentication middleware. The required permission
// names are validated against the catalog when the route is registered, so a
// typo or a name missing from the catalog aborts startup instead of locking
// everyone out of the endpoint at runtime.
type Gate struct {
	auth    *authz.Authenticator
	catalog authz.Catalog
}

// NewGate creates a Gate over the given authenticator and catalog.
func NewGate(auth *authz.Authenticator, catalog authz.Catalog) *Gate {
	return &Gate{auth: auth, catalog: catalog}
}

// Require returns a middleware that only admits requests whose bearer token
// passes verification and carries the required permissions in both its
// embedded scopes and the subject's live permission set.
func (g *Gate) Require(permissions ...string) echo.MiddlewareFunc {
	if err := g.catalog.Validate(permissions...); err != nil {
		panic(err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			token, err := bearerToken(c)
			if err != nil {
				log.Warn("Missing or malformed authorization header")
				prometheus.TokenVerificationCounter.WithLabelValues("unauthenticated").Inc()
				return c.JSON(http.StatusUnauthorized, err)
			}

			identity, err := g.auth.Authenticate(c.Request().Context(), token, permissions)
			if err != nil {
				if appErr, ok := apperr.AsError(err); ok {
					if appErr.Kind == apperr.Unauthorized {
						prometheus.TokenVerificationCounter.WithLabelValues("unauthorized").Inc()
					} else {
						prometheus.TokenVerificationCounter.WithLabelValues("unauthenticated").Inc()
					}
					return c.JSON(appErr.Status(), appErr)
				}
				return err
			}

			prometheus.TokenVerificationCounter.WithLabelValues("ok").Inc()
			c.Set(identityKey, identity)
			log.Debug("Request authorized",
				zap.String("user", identity.User.Name),
				zap.Strings("required", permissions))

			return next(c)
		}
	}
}

// IdentityFromEcho retrieves the authenticated identity stored by Require.
func IdentityFromEcho(c echo.Context) *authz.Identity {
	identity, _ := c.Get(identityKey).(*authz.Identity)
	return identity
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.InvalidCredentials(uuid.New().String())
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", apperr.InvalidCredentials(uuid.New().String())
	}
	return parts[1], nil
}
