package store

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// TenantData carries the caller-editable fields of a tenant.
type TenantData struct {
	Slug        string
	Title       string
	Description string
}

// CreateTenant creates a tenant under the application identified by slug.
// The tenant slug must be unique within that application only; two tenants
// under different applications may share a slug.
func (s *Store) CreateTenant(ctx context.Context, appSlug string, data TenantData) (*model.Tenant, error) {
	if err := model.ValidateSlug("slug", data.Slug); err != nil {
		return nil, err
	}

	app, err := s.GetApplication(ctx, appSlug)
	if err != nil {
		return nil, err
	}

	// Check if the slug already exists within this application.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("slug = ? AND application_id = ?", data.Slug, app.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateTenant(data.Slug)
	}

	tenant := &model.Tenant{
		Slug:          data.Slug,
		ApplicationID: app.ID,
		Title:         data.Title,
		Description:   data.Description,
	}
	if err := s.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateTenant(data.Slug))
	}
	return tenant, nil
}

// GetTenant retrieves a tenant by its slug path.
func (s *Store) GetTenant(ctx context.Context, appSlug, tnSlug string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).
		Joins("JOIN applications ON applications.id = tenants.application_id").
		Where("tenants.slug = ? AND applications.slug = ?", tnSlug, appSlug).
		First(&tenant).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoTenant(tnSlug)
		}
		return nil, err
	}
	return &tenant, nil
}

// GetTenantByID retrieves a tenant by id, validating that it belongs to the
// given application.
func (s *Store) GetTenantByID(ctx context.Context, appID, tnID uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).
		Where("id = ? AND application_id = ?", tnID, appID).
		First(&tenant).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoTenant(strconv.FormatUint(uint64(tnID), 10))
		}
		return nil, err
	}
	return &tenant, nil
}

// ListTenants returns all tenants of an application.
func (s *Store) ListTenants(ctx context.Context, appSlug string) ([]model.Tenant, error) {
	if _, err := s.GetApplication(ctx, appSlug); err != nil {
		return nil, err
	}
	var tenants []model.Tenant
	err := s.db.WithContext(ctx).
		Joins("JOIN applications ON applications.id = tenants.application_id").
		Where("applications.slug = ?", appSlug).
		Order("tenants.slug").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// UpdateTenant edits an existing tenant. The new slug must not collide with
// a sibling tenant under the same application; the same slug under another
// application is not a conflict.
func (s *Store) UpdateTenant(ctx context.Context, appSlug, tnSlug string, data TenantData) (*model.Tenant, error) {
	if err := model.ValidateSlug("slug", data.Slug); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("slug = ? AND application_id = ? AND id <> ?",
			data.Slug, tenant.ApplicationID, tenant.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateTenant(data.Slug)
	}

	tenant.Slug = data.Slug
	tenant.Title = data.Title
	tenant.Description = data.Description
	if err := s.db.WithContext(ctx).Save(tenant).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateTenant(data.Slug))
	}
	return tenant, nil
}

// DeleteTenant removes a tenant together with its users, roles, permissions
// and their association rows.
func (s *Store) DeleteTenant(ctx context.Context, appSlug, tnSlug string) error {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.WithTx(tx).deleteTenantContents(tenant.ID); err != nil {
			return err
		}
		return tx.Delete(tenant).Error
	})
}

// deleteTenantContents removes everything a tenant owns. Association rows go
// first so no dangling join-table entries survive the hard delete.
func (s *Store) deleteTenantContents(tnID uint) error {
	if err := s.db.Exec(
		"DELETE FROM user_roles WHERE user_id IN (SELECT id FROM users WHERE tenant_id = ?)",
		tnID).Error; err != nil {
		return err
	}
	if err := s.db.Exec(
		"DELETE FROM role_permissions WHERE role_id IN (SELECT id FROM roles WHERE tenant_id = ?)",
		tnID).Error; err != nil {
		return err
	}
	if err := s.db.Where("tenant_id = ?", tnID).Delete(&model.User{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("tenant_id = ?", tnID).Delete(&model.Role{}).Error; err != nil {
		return err
	}
	return s.db.Where("tenant_id = ?", tnID).Delete(&model.Permission{}).Error
}
