// Package apperr defines the error taxonomy shared by the store, the
// authorization protocol and the HTTP handlers. Every failure surfaced to a
// caller is an *Error with a stable code; the message is for humans and may
// be interpolated from the params.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping and logging.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	Unauthenticated
	Unauthorized
)

// Error is the structured error record surfaced to callers.
type Error struct {
	Kind    Kind              `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError extracts the *Error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func newError(kind Kind, code, field, format string, params map[string]string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Params:  params,
	}
}

// NoApp reports a missing application.
func NoApp(slug string) *Error {
	return newError(NotFound, "no-app", "",
		"No application with a `%s` slug was found.",
		map[string]string{"appSlug": slug}, slug)
}

// DuplicateApp reports an application slug collision.
func DuplicateApp(slug string) *Error {
	return newError(Conflict, "duplicate-app", "slug",
		"An application with a `%s` slug already exists.",
		map[string]string{"appSlug": slug}, slug)
}

// NoTenant reports a missing tenant inside an application.
func NoTenant(slug string) *Error {
	return newError(NotFound, "no-tenant", "",
		"No tenant with a `%s` slug was found within this application.",
		map[string]string{"tenantSlug": slug}, slug)
}

// DuplicateTenant reports a tenant slug collision inside an application.
func DuplicateTenant(slug string) *Error {
	return newError(Conflict, "duplicate-tenant", "slug",
		"A tenant with a `%s` slug already exists within this application.",
		map[string]string{"tenantSlug": slug}, slug)
}

// NoUser reports a missing user inside a tenant.
func NoUser(name string) *Error {
	return newError(NotFound, "no-user", "",
		"No user `%s` was found within this tenant.",
		map[string]string{"user": name}, name)
}

// DuplicateUser reports a user name collision inside a tenant.
func DuplicateUser(name string) *Error {
	return newError(Conflict, "duplicate-user", "name",
		"A user named `%s` already exists within this tenant.",
		map[string]string{"user": name}, name)
}

// NoRole reports a missing role inside a tenant.
func NoRole(name string) *Error {
	return newError(NotFound, "no-role", "",
		"No role `%s` was found within this tenant.",
		map[string]string{"role": name}, name)
}

// DuplicateRole reports a role name collision inside a tenant.
func DuplicateRole(name string) *Error {
	return newError(Conflict, "duplicate-role", "name",
		"A role named `%s` already exists within this tenant.",
		map[string]string{"role": name}, name)
}

// NoPerm reports a missing permission inside a tenant.
func NoPerm(name string) *Error {
	return newError(NotFound, "no-perm", "",
		"No permission `%s` was found within this tenant.",
		map[string]string{"perm": name}, name)
}

// DuplicatePerm reports a permission name collision inside a tenant.
func DuplicatePerm(name string) *Error {
	return newError(Conflict, "duplicate-perm", "name",
		"A permission named `%s` already exists within this tenant.",
		map[string]string{"perm": name}, name)
}

// NoAssociation reports an attempt to remove an association edge that does
// not exist. This is a request error, distinct from the entities themselves
// being missing.
func NoAssociation() *Error {
	return newError(Validation, "no-association", "",
		"The association does not exist.", nil)
}

// InvalidCredentials reports an authentication failure. The trace id ties
// the opaque message sent to the caller to the detailed server-side log.
func InvalidCredentials(traceID string) *Error {
	return newError(Unauthenticated, "invalid-credentials", "",
		"Could not validate credentials (trace ID: %s).",
		map[string]string{"uniqueId": traceID}, traceID)
}

// NoPermission reports an authorization failure.
func NoPermission(traceID string) *Error {
	return newError(Unauthorized, "no-permission", "",
		"Not enough permissions (trace ID: %s).",
		map[string]string{"uniqueId": traceID}, traceID)
}

// Invalid reports a validation failure for a specific field.
func Invalid(field, reason string) *Error {
	return newError(Validation, "validation", field, "%s", nil, reason)
}

// InternalError wraps an unexpected failure. The caller only sees the
// correlation id; the cause stays in the server logs.
func InternalError(traceID string) *Error {
	return newError(Internal, "internal-error", "",
		"Internal error (trace ID: %s).",
		map[string]string{"uniqueId": traceID}, traceID)
}
