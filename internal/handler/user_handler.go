package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rbac-service/internal/apperr"
	"rbac-service/internal/store"
	"rbac-service/pkg/logger"
	"rbac-service/prometheus"
)

// userRequest carries a plaintext password; the handler hashes it before it
// reaches the store. Absent password and suspended fields leave the stored
// values untouched on update.
type userRequest struct {
	Name        string  `json:"name"`
	Password    *string `json:"password,omitempty"`
	Suspended   *bool   `json:"suspended,omitempty"`
	Description string  `json:"description"`
}

func paramUint(c echo.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Invalid(name, "The id in the path must be a positive integer.")
	}
	return uint(value), nil
}

// passwordHash turns the client-supplied plaintext, when present, into the
// stored credential format.
func (h *Handler) passwordHash(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	hash, err := h.Verifier.Hash(*plaintext)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

// ListUsers returns the names of all users in a tenant.
func (h *Handler) ListUsers(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	users, err := h.Store.ListUsers(c.Request().Context(), c.Param("app_slug"), c.Param("tn_slug"))
	if err != nil {
		return writeError(c, err)
	}

	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Name)
	}
	return c.JSON(http.StatusOK, names)
}

// CreateUser creates a user inside a tenant. The plaintext password, when
// present, is hashed here; clients never supply the stored format.
func (h *Handler) CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "create")

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}
	hash, err := h.passwordHash(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, err := h.Store.CreateUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), store.UserData{
			Name:        req.Name,
			Password:    hash,
			Suspended:   req.Suspended,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("User created",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", user.Name))
	return c.JSON(http.StatusCreated, user)
}

// GetUser returns one user by name through the slug path.
func (h *Handler) GetUser(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	user, err := h.Store.GetUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser edits an existing user.
func (h *Handler) UpdateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "update")

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}
	hash, err := h.passwordHash(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	user, err := h.Store.UpdateUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name"), store.UserData{
			Name:        req.Name,
			Password:    hash,
			Suspended:   req.Suspended,
			Description: req.Description,
		})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("User updated",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", user.Name))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and its role associations.
func (h *Handler) DeleteUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.DeleteUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), c.Param("name")); err != nil {
		return writeError(c, err)
	}

	log.Info("User deleted",
		zap.String("app", c.Param("app_slug")),
		zap.String("tenant", c.Param("tn_slug")),
		zap.String("name", c.Param("name")))
	return c.NoContent(http.StatusNoContent)
}

// GetUserRoles returns the roles assigned to a user.
func (h *Handler) GetUserRoles(c echo.Context) error {
	userID, err := paramUint(c, "user_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	roles, err := h.Store.UserRoles(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

// AddUserRole assigns a role to a user. Assigning a role the user already
// has succeeds without changing anything.
func (h *Handler) AddUserRole(c echo.Context) error {
	prometheus.RecordEntityOperation("user", "assign-role")

	userID, err := paramUint(c, "user_id")
	if err != nil {
		return writeError(c, err)
	}
	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.Store.AddRoleToUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), userID, roleID); err != nil {
		return writeError(c, err)
	}

	roles, err := h.Store.UserRoles(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

// RemoveUserRole removes a role assignment from a user.
func (h *Handler) RemoveUserRole(c echo.Context) error {
	prometheus.RecordEntityOperation("user", "unassign-role")

	userID, err := paramUint(c, "user_id")
	if err != nil {
		return writeError(c, err)
	}
	roleID, err := paramUint(c, "role_id")
	if err != nil {
		return writeError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.Store.RemoveRoleFromUser(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), userID, roleID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceUserRoles replaces the full role set of a user.
func (h *Handler) ReplaceUserRoles(c echo.Context) error {
	prometheus.RecordEntityOperation("user", "replace-roles")

	userID, err := paramUint(c, "user_id")
	if err != nil {
		return writeError(c, err)
	}

	var roleIDs []uint
	if err := c.Bind(&roleIDs); err != nil {
		return writeError(c, apperr.Invalid("body", "The request body could not be parsed."))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	roles, err := h.Store.ReplaceUserRoles(c.Request().Context(),
		c.Param("app_slug"), c.Param("tn_slug"), userID, roleIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}
