// Package store implements the tenancy data model over gorm: scoped lookups
// by slug path or by id path, create/rename operations with scoped name
// uniqueness, association management and the permission resolver.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store wraps the database handle. All methods re-read committed state; no
// results are cached between calls, so authorization decisions always see
// the latest permission assignments.
type Store struct {
	db *gorm.DB
}

// New creates a store over the given database handle. The handle must be
// opened with gorm's TranslateError option so that unique-constraint
// violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// DB exposes the underlying handle for transaction scoping.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// tenantScopeBySlug narrows a query on `table` to rows reachable through the
// tenant and application identified by their slugs. Rows whose tenant lives
// under a different application do not match, even when the bare id exists.
func (s *Store) tenantScopeBySlug(ctx context.Context, table, appSlug, tnSlug string) *gorm.DB {
	return s.db.WithContext(ctx).
		Joins("JOIN tenants ON tenants.id = "+table+".tenant_id").
		Joins("JOIN applications ON applications.id = tenants.application_id").
		Where("tenants.slug = ? AND applications.slug = ?", tnSlug, appSlug)
}

// tenantScopeByID is the id-path twin of tenantScopeBySlug. Both forms must
// resolve to the same row when both are valid.
func (s *Store) tenantScopeByID(ctx context.Context, table string, appID, tnID uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Joins("JOIN tenants ON tenants.id = "+table+".tenant_id").
		Where(table+".tenant_id = ? AND tenants.application_id = ?", tnID, appID)
}

// translateDuplicate converts the constraint-violation backstop into the
// same Conflict the pre-check would have produced. The pre-check is only a
// fast path; under concurrent writers this translation is the actual
// correctness guarantee.
func translateDuplicate(err error, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
