package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Application{},
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
	))
	return db
}

func newTestStore(t *testing.T) *Store {
	return New(openTestDB(t))
}

// seedTenant creates an application and a tenant under it.
func seedTenant(t *testing.T, s *Store, appSlug, tnSlug string) *model.Tenant {
	t.Helper()
	ctx := context.Background()

	if _, err := s.GetApplication(ctx, appSlug); err != nil {
		_, err = s.CreateApplication(ctx, ApplicationData{Slug: appSlug})
		require.NoError(t, err)
	}
	tenant, err := s.CreateTenant(ctx, appSlug, TenantData{Slug: tnSlug})
	require.NoError(t, err)
	return tenant
}

func TestApplicationUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateApplication(ctx, ApplicationData{Slug: "mgmt"})
	require.NoError(t, err)

	_, err = s.CreateApplication(ctx, ApplicationData{Slug: "mgmt"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	appErr, ok := apperr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate-app", appErr.Code)
}

func TestSlugValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []string{"", "ab", "UPPER", "has space", "has/slash"}
	for _, slug := range cases {
		_, err := s.CreateApplication(ctx, ApplicationData{Slug: slug})
		assert.True(t, apperr.IsKind(err, apperr.Validation), "slug %q", slug)
	}
}

func TestTenantSlugScopedUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")

	// Same slug under a different application is fine.
	seedTenant(t, s, "app-two", "root")

	// Same slug under the same application conflicts.
	_, err := s.CreateTenant(ctx, "app-one", TenantData{Slug: "root"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestTenantRenameConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "alpha")
	_, err := s.CreateTenant(ctx, "app-one", TenantData{Slug: "beta"})
	require.NoError(t, err)
	seedTenant(t, s, "app-two", "gamma")

	// Renaming to a sibling's slug fails.
	_, err = s.UpdateTenant(ctx, "app-one", "beta", TenantData{Slug: "alpha"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	// Renaming to a slug used under a different application succeeds.
	tenant, err := s.UpdateTenant(ctx, "app-one", "beta", TenantData{Slug: "gamma"})
	require.NoError(t, err)
	assert.Equal(t, "gamma", tenant.Slug)

	// Renaming to its own slug is not a conflict.
	_, err = s.UpdateTenant(ctx, "app-one", "gamma", TenantData{Slug: "gamma"})
	require.NoError(t, err)
}

func TestScopedLookupPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tnOne := seedTenant(t, s, "app-one", "root")
	tnTwo := seedTenant(t, s, "app-two", "root")

	user, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)

	// Slug path and id path resolve the same row.
	bySlug, err := s.GetUser(ctx, "app-one", "root", "alice")
	require.NoError(t, err)
	byID, err := s.GetUserByID(ctx, tnOne.ApplicationID, tnOne.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, bySlug.ID, byID.ID)

	// The same name through a different application's tenant is not found,
	// even though that tenant shares the slug.
	_, err = s.GetUser(ctx, "app-two", "root", "alice")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// The bare id through the wrong tenant is not found either.
	_, err = s.GetUserByID(ctx, tnTwo.ApplicationID, tnTwo.ID, user.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestNameScopedUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "first")
	_, err := s.CreateTenant(ctx, "app-one", TenantData{Slug: "second"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "app-one", "first", UserData{Name: "alice"})
	require.NoError(t, err)

	// Same name in a sibling tenant is fine; the uniqueness scope is the
	// tenant, not the system.
	_, err = s.CreateUser(ctx, "app-one", "second", UserData{Name: "alice"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "app-one", "first", UserData{Name: "alice"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	_, err = s.CreateRole(ctx, "app-one", "first", RoleData{Name: "admin"})
	require.NoError(t, err)
	_, err = s.CreateRole(ctx, "app-one", "first", RoleData{Name: "admin"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	_, err = s.CreatePermission(ctx, "app-one", "first", PermissionData{Name: "post:r"})
	require.NoError(t, err)
	_, err = s.CreatePermission(ctx, "app-one", "first", PermissionData{Name: "post:r"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestConstraintBackstopTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant := seedTenant(t, s, "app-one", "root")
	_, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)

	// Bypass the pre-check, the way a concurrent writer that lost the race
	// would: the constraint must fire and translate to the same Conflict.
	err = s.db.Create(&model.User{Name: "alice", TenantID: tenant.ID}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.True(t, apperr.IsKind(
		translateDuplicate(err, apperr.DuplicateUser("alice")), apperr.Conflict))
}

func TestPermissionResolver(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	user, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)

	// No roles: empty set, not an error.
	perms, err := s.UserPermissions(ctx, "app-one", "root", "alice")
	require.NoError(t, err)
	assert.Empty(t, perms)

	reader, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "reader"})
	require.NoError(t, err)
	editor, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "editor"})
	require.NoError(t, err)

	permRead, err := s.CreatePermission(ctx, "app-one", "root", PermissionData{Name: "post:r"})
	require.NoError(t, err)
	permWrite, err := s.CreatePermission(ctx, "app-one", "root", PermissionData{Name: "post:w"})
	require.NoError(t, err)

	require.NoError(t, s.AddPermissionToRole(ctx, "app-one", "root", reader.ID, permRead.ID))
	require.NoError(t, s.AddPermissionToRole(ctx, "app-one", "root", editor.ID, permRead.ID))
	require.NoError(t, s.AddPermissionToRole(ctx, "app-one", "root", editor.ID, permWrite.ID))
	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, reader.ID))
	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, editor.ID))

	// Union semantics: post:r is granted by both roles but appears once.
	perms, err = s.UserPermissions(ctx, "app-one", "root", "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"post:r": {},
		"post:w": {},
	}, perms)

	// Removing a role is reflected by the next resolution; nothing caches.
	require.NoError(t, s.RemoveRoleFromUser(ctx, "app-one", "root", user.ID, editor.ID))
	perms, err = s.UserPermissions(ctx, "app-one", "root", "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"post:r": {}}, perms)
}

func TestAssociationSetSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	user, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)
	role, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "reader"})
	require.NoError(t, err)

	// Adding twice is a no-op success and produces a single edge.
	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, role.ID))
	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, role.ID))

	var count int64
	require.NoError(t, s.db.Table("user_roles").
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Removing an existing edge works; removing it again is a request
	// error distinct from not-found.
	require.NoError(t, s.RemoveRoleFromUser(ctx, "app-one", "root", user.ID, role.ID))
	err = s.RemoveRoleFromUser(ctx, "app-one", "root", user.ID, role.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	appErr, ok := apperr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "no-association", appErr.Code)

	// A missing role is still a plain not-found.
	err = s.AddRoleToUser(ctx, "app-one", "root", user.ID, role.ID+100)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestReplaceAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	user, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)
	reader, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "reader"})
	require.NoError(t, err)
	editor, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "editor"})
	require.NoError(t, err)

	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, reader.ID))

	roles, err := s.ReplaceUserRoles(ctx, "app-one", "root", user.ID, []uint{editor.ID})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "editor", roles[0].Name)

	// Replacing with a missing role fails without touching the set.
	_, err = s.ReplaceUserRoles(ctx, "app-one", "root", user.ID, []uint{editor.ID + 100})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestTenantCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	user, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)
	role, err := s.CreateRole(ctx, "app-one", "root", RoleData{Name: "reader"})
	require.NoError(t, err)
	perm, err := s.CreatePermission(ctx, "app-one", "root", PermissionData{Name: "post:r"})
	require.NoError(t, err)
	require.NoError(t, s.AddRoleToUser(ctx, "app-one", "root", user.ID, role.ID))
	require.NoError(t, s.AddPermissionToRole(ctx, "app-one", "root", role.ID, perm.ID))

	require.NoError(t, s.DeleteTenant(ctx, "app-one", "root"))

	for _, table := range []string{"users", "roles", "permissions", "user_roles", "role_permissions"} {
		var count int64
		require.NoError(t, s.db.Table(table).Count(&count).Error)
		assert.Zero(t, count, "table %s", table)
	}
	_, err = s.GetTenant(ctx, "app-one", "root")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestApplicationCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	_, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)

	// A second application is untouched by the delete.
	seedTenant(t, s, "app-two", "root")
	survivor, err := s.CreateUser(ctx, "app-two", "root", UserData{Name: "bob"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteApplication(ctx, "app-one"))

	_, err = s.GetApplication(ctx, "app-one")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = s.GetTenant(ctx, "app-one", "root")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	kept, err := s.GetUser(ctx, "app-two", "root", "bob")
	require.NoError(t, err)
	assert.Equal(t, survivor.ID, kept.ID)
}

func TestRenameUserConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	_, err := s.CreateUser(ctx, "app-one", "root", UserData{Name: "alice"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "app-one", "root", UserData{Name: "bob"})
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, "app-one", "root", "bob", UserData{Name: "alice"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	suspended := true
	user, err := s.UpdateUser(ctx, "app-one", "root", "bob", UserData{
		Name:      "bobby",
		Suspended: &suspended,
	})
	require.NoError(t, err)
	assert.Equal(t, "bobby", user.Name)
	assert.True(t, user.Suspended)
}

func TestRenameUserKeepsCredentialsAndSuspension(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedTenant(t, s, "app-one", "root")
	hash := "$2a$10$stored-credential-hash"
	suspended := true
	_, err := s.CreateUser(ctx, "app-one", "root", UserData{
		Name:      "alice",
		Password:  &hash,
		Suspended: &suspended,
	})
	require.NoError(t, err)

	// A rename-only edit must not touch the stored hash or lift the
	// suspension gate.
	got, err := s.UpdateUser(ctx, "app-one", "root", "alice", UserData{Name: "alicia"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Name)
	require.NotNil(t, got.Password)
	assert.Equal(t, hash, *got.Password)
	assert.True(t, got.Suspended)

	// Explicitly sending the fields still changes them.
	newHash := "$2a$10$rotated-credential-hash"
	unsuspended := false
	got, err = s.UpdateUser(ctx, "app-one", "root", "alicia", UserData{
		Name:      "alicia",
		Password:  &newHash,
		Suspended: &unsuspended,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Password)
	assert.Equal(t, newHash, *got.Password)
	assert.False(t, got.Suspended)
}

func TestLookupByUnknownIDNamesTheID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant := seedTenant(t, s, "app-one", "root")

	_, err := s.GetUserByID(ctx, tenant.ApplicationID, tenant.ID, 42)
	require.Error(t, err)
	appErr, ok := apperr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "no-user", appErr.Code)
	assert.Contains(t, appErr.Message, "42")
	assert.Equal(t, "42", appErr.Params["user"])
}
