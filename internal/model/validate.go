package model

import (
	"regexp"

	"rbac-service/internal/apperr"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9\-_]+$`)
	namePattern = regexp.MustCompile(`^[a-z0-9\-_]+$`)
	permPattern = regexp.MustCompile(`^[a-z0-9\-_:]+$`)
)

// ValidateSlug checks an application or tenant slug: lowercase letters,
// digits, underscore and minus, between 3 and 255 characters.
func ValidateSlug(field, v string) error {
	if len(v) < 3 {
		return apperr.Invalid(field, "The slug must be at least three characters in length.")
	}
	if len(v) > 255 {
		return apperr.Invalid(field, "The slug must be less than 255 characters.")
	}
	if !slugPattern.MatchString(v) {
		return apperr.Invalid(field, "The slug can include lowercase letters, numbers, underscore (_) and minus (-) characters.")
	}
	return nil
}

// ValidateName checks a user or role name: lowercase letters, digits,
// underscore and minus, between 1 and 255 characters.
func ValidateName(field, v string) error {
	if len(v) == 0 {
		return apperr.Invalid(field, "The name must be non-empty.")
	}
	if len(v) > 255 {
		return apperr.Invalid(field, "The name must be less than 255 characters.")
	}
	if !namePattern.MatchString(v) {
		return apperr.Invalid(field, "The name can include lowercase letters, numbers, underscore (_) and minus (-) characters.")
	}
	return nil
}

// ValidatePermName checks a permission name; unlike user and role names it
// also allows the colon used by the `resource:action` convention.
func ValidatePermName(field, v string) error {
	if len(v) == 0 {
		return apperr.Invalid(field, "The permission name must be non-empty.")
	}
	if len(v) > 255 {
		return apperr.Invalid(field, "The permission name must be less than 255 characters.")
	}
	if !permPattern.MatchString(v) {
		return apperr.Invalid(field, "The permission name can include lowercase letters, numbers, underscore (_), minus (-) and colon (:) characters.")
	}
	return nil
}
