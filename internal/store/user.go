package store

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// UserData carries the caller-editable fields of a user. Password is the
// opaque hash produced by the credential verifier; on create nil means the
// user authenticates externally and cannot log in with a password, on update
// nil keeps the stored hash. Suspended nil likewise means "leave as is" on
// update, so a rename cannot silently lift a suspension.
type UserData struct {
	Name        string
	Password    *string
	Suspended   *bool
	Description string
}

// CreateUser creates a user inside the tenant identified by the slug path.
func (s *Store) CreateUser(ctx context.Context, appSlug, tnSlug string, data UserData) (*model.User, error) {
	if err := model.ValidateName("name", data.Name); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}

	// Check if the name already exists within this tenant.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("name = ? AND tenant_id = ?", data.Name, tenant.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateUser(data.Name)
	}

	user := &model.User{
		Name:        data.Name,
		TenantID:    tenant.ID,
		Password:    data.Password,
		Suspended:   data.Suspended != nil && *data.Suspended,
		Description: data.Description,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateUser(data.Name))
	}
	return user, nil
}

// GetUser retrieves a user by name through the slug path.
func (s *Store) GetUser(ctx context.Context, appSlug, tnSlug, name string) (*model.User, error) {
	var user model.User
	err := s.tenantScopeBySlug(ctx, "users", appSlug, tnSlug).
		Where("users.name = ?", name).
		First(&user).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoUser(name)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id through the id path. A user reachable
// only through a different tenant resolves as not found.
func (s *Store) GetUserByID(ctx context.Context, appID, tnID, id uint) (*model.User, error) {
	var user model.User
	err := s.tenantScopeByID(ctx, "users", appID, tnID).
		Where("users.id = ?", id).
		First(&user).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoUser(strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return &user, nil
}

// GetUserWithGrants retrieves a user by name through the slug path with its
// roles and their permissions preloaded. It always hits the database so the
// grants reflect the latest committed state.
func (s *Store) GetUserWithGrants(ctx context.Context, appSlug, tnSlug, name string) (*model.User, error) {
	var user model.User
	err := s.tenantScopeBySlug(ctx, "users", appSlug, tnSlug).
		Preload("Roles.Permissions").
		Where("users.name = ?", name).
		First(&user).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoUser(name)
		}
		return nil, err
	}
	return &user, nil
}

// UserPermissions resolves the effective permission set of a user: the union
// of the permission names of all roles currently assigned to it. A user with
// no roles yields an empty set. The result is never stored.
func (s *Store) UserPermissions(ctx context.Context, appSlug, tnSlug, name string) (map[string]struct{}, error) {
	user, err := s.GetUserWithGrants(ctx, appSlug, tnSlug, name)
	if err != nil {
		return nil, err
	}
	return user.PermissionNames(), nil
}

// ListUsers returns all users of a tenant.
func (s *Store) ListUsers(ctx context.Context, appSlug, tnSlug string) ([]model.User, error) {
	if _, err := s.GetTenant(ctx, appSlug, tnSlug); err != nil {
		return nil, err
	}
	var users []model.User
	err := s.tenantScopeBySlug(ctx, "users", appSlug, tnSlug).
		Order("users.name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser edits an existing user. The name in the path identifies the
// record; the name in the data becomes the new name.
func (s *Store) UpdateUser(ctx context.Context, appSlug, tnSlug, name string, data UserData) (*model.User, error) {
	if err := model.ValidateName("name", data.Name); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, appSlug, tnSlug, name)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("name = ? AND tenant_id = ? AND id <> ?",
			data.Name, user.TenantID, user.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateUser(data.Name)
	}

	user.Name = data.Name
	user.Description = data.Description
	// The credential hash and the suspension gate only change when the
	// caller explicitly sends them.
	if data.Password != nil {
		user.Password = data.Password
	}
	if data.Suspended != nil {
		user.Suspended = *data.Suspended
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateUser(data.Name))
	}
	return user, nil
}

// DeleteUser removes a user and its role associations.
func (s *Store) DeleteUser(ctx context.Context, appSlug, tnSlug, name string) error {
	user, err := s.GetUser(ctx, appSlug, tnSlug, name)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
