package store

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// PermissionData carries the caller-editable fields of a permission.
type PermissionData struct {
	Name        string
	Description string
}

// CreatePermission creates a permission inside the tenant identified by the
// slug path.
func (s *Store) CreatePermission(ctx context.Context, appSlug, tnSlug string, data PermissionData) (*model.Permission, error) {
	if err := model.ValidatePermName("name", data.Name); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Permission{}).
		Where("name = ? AND tenant_id = ?", data.Name, tenant.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicatePerm(data.Name)
	}

	perm := &model.Permission{
		Name:        data.Name,
		TenantID:    tenant.ID,
		Description: data.Description,
	}
	if err := s.db.WithContext(ctx).Create(perm).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicatePerm(data.Name))
	}
	return perm, nil
}

// GetPermission retrieves a permission by name through the slug path.
func (s *Store) GetPermission(ctx context.Context, appSlug, tnSlug, name string) (*model.Permission, error) {
	var perm model.Permission
	err := s.tenantScopeBySlug(ctx, "permissions", appSlug, tnSlug).
		Where("permissions.name = ?", name).
		First(&perm).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoPerm(name)
		}
		return nil, err
	}
	return &perm, nil
}

// GetPermissionByID retrieves a permission by id through the id path.
func (s *Store) GetPermissionByID(ctx context.Context, appID, tnID, id uint) (*model.Permission, error) {
	var perm model.Permission
	err := s.tenantScopeByID(ctx, "permissions", appID, tnID).
		Where("permissions.id = ?", id).
		First(&perm).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoPerm(strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return &perm, nil
}

// ListPermissions returns all permissions of a tenant.
func (s *Store) ListPermissions(ctx context.Context, appSlug, tnSlug string) ([]model.Permission, error) {
	if _, err := s.GetTenant(ctx, appSlug, tnSlug); err != nil {
		return nil, err
	}
	var perms []model.Permission
	err := s.tenantScopeBySlug(ctx, "permissions", appSlug, tnSlug).
		Order("permissions.name").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// UpdatePermission edits an existing permission.
func (s *Store) UpdatePermission(ctx context.Context, appSlug, tnSlug, name string, data PermissionData) (*model.Permission, error) {
	if err := model.ValidatePermName("name", data.Name); err != nil {
		return nil, err
	}

	perm, err := s.GetPermission(ctx, appSlug, tnSlug, name)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Permission{}).
		Where("name = ? AND tenant_id = ? AND id <> ?",
			data.Name, perm.TenantID, perm.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicatePerm(data.Name)
	}

	perm.Name = data.Name
	perm.Description = data.Description
	if err := s.db.WithContext(ctx).Save(perm).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicatePerm(data.Name))
	}
	return perm, nil
}

// DeletePermission removes a permission and its role associations.
func (s *Store) DeletePermission(ctx context.Context, appSlug, tnSlug, name string) error {
	perm, err := s.GetPermission(ctx, appSlug, tnSlug, name)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE permission_id = ?", perm.ID).Error; err != nil {
			return err
		}
		return tx.Delete(perm).Error
	})
}
