package store

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// RoleData carries the caller-editable fields of a role.
type RoleData struct {
	Name        string
	Description string
}

// CreateRole creates a role inside the tenant identified by the slug path.
func (s *Store) CreateRole(ctx context.Context, appSlug, tnSlug string, data RoleData) (*model.Role, error) {
	if err := model.ValidateName("name", data.Name); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Role{}).
		Where("name = ? AND tenant_id = ?", data.Name, tenant.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateRole(data.Name)
	}

	role := &model.Role{
		Name:        data.Name,
		TenantID:    tenant.ID,
		Description: data.Description,
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateRole(data.Name))
	}
	return role, nil
}

// GetRole retrieves a role by name through the slug path.
func (s *Store) GetRole(ctx context.Context, appSlug, tnSlug, name string) (*model.Role, error) {
	var role model.Role
	err := s.tenantScopeBySlug(ctx, "roles", appSlug, tnSlug).
		Where("roles.name = ?", name).
		First(&role).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoRole(name)
		}
		return nil, err
	}
	return &role, nil
}

// GetRoleByID retrieves a role by id through the id path.
func (s *Store) GetRoleByID(ctx context.Context, appID, tnID, id uint) (*model.Role, error) {
	var role model.Role
	err := s.tenantScopeByID(ctx, "roles", appID, tnID).
		Where("roles.id = ?", id).
		First(&role).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoRole(strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return &role, nil
}

// ListRoles returns all roles of a tenant.
func (s *Store) ListRoles(ctx context.Context, appSlug, tnSlug string) ([]model.Role, error) {
	if _, err := s.GetTenant(ctx, appSlug, tnSlug); err != nil {
		return nil, err
	}
	var roles []model.Role
	err := s.tenantScopeBySlug(ctx, "roles", appSlug, tnSlug).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// UpdateRole edits an existing role.
func (s *Store) UpdateRole(ctx context.Context, appSlug, tnSlug, name string, data RoleData) (*model.Role, error) {
	if err := model.ValidateName("name", data.Name); err != nil {
		return nil, err
	}

	role, err := s.GetRole(ctx, appSlug, tnSlug, name)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Role{}).
		Where("name = ? AND tenant_id = ? AND id <> ?",
			data.Name, role.TenantID, role.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateRole(data.Name)
	}

	role.Name = data.Name
	role.Description = data.Description
	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateRole(data.Name))
	}
	return role, nil
}

// DeleteRole removes a role together with its user and permission
// associations.
func (s *Store) DeleteRole(ctx context.Context, appSlug, tnSlug, name string) error {
	role, err := s.GetRole(ctx, appSlug, tnSlug, name)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", role.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", role.ID).Error; err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
}
