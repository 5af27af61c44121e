package store

import (
	"context"

	"gorm.io/gorm"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// ApplicationData carries the caller-editable fields of an application.
type ApplicationData struct {
	Slug        string
	Title       string
	Description string
}

// CreateApplication creates a new application with a globally unique slug.
func (s *Store) CreateApplication(ctx context.Context, data ApplicationData) (*model.Application, error) {
	if err := model.ValidateSlug("slug", data.Slug); err != nil {
		return nil, err
	}

	// Check if the slug already exists.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("slug = ?", data.Slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateApp(data.Slug)
	}

	app := &model.Application{
		Slug:        data.Slug,
		Title:       data.Title,
		Description: data.Description,
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateApp(data.Slug))
	}
	return app, nil
}

// GetApplication retrieves an application by slug.
func (s *Store) GetApplication(ctx context.Context, slug string) (*model.Application, error) {
	var app model.Application
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&app).Error
	if err != nil {
		if notFound(err) {
			return nil, apperr.NoApp(slug)
		}
		return nil, err
	}
	return &app, nil
}

// ListApplications returns all applications.
func (s *Store) ListApplications(ctx context.Context) ([]model.Application, error) {
	var apps []model.Application
	if err := s.db.WithContext(ctx).Order("slug").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplication edits an existing application. The slug in the path
// identifies the record; the slug in the data becomes the new slug.
func (s *Store) UpdateApplication(ctx context.Context, slug string, data ApplicationData) (*model.Application, error) {
	if err := model.ValidateSlug("slug", data.Slug); err != nil {
		return nil, err
	}

	app, err := s.GetApplication(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Check if the new slug already exists, excluding the record being edited.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("slug = ? AND id <> ?", data.Slug, app.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.DuplicateApp(data.Slug)
	}

	app.Slug = data.Slug
	app.Title = data.Title
	app.Description = data.Description
	if err := s.db.WithContext(ctx).Save(app).Error; err != nil {
		return nil, translateDuplicate(err, apperr.DuplicateApp(data.Slug))
	}
	return app, nil
}

// DeleteApplication removes an application and everything under it: its
// tenants and their users, roles, permissions and association rows.
func (s *Store) DeleteApplication(ctx context.Context, slug string) error {
	app, err := s.GetApplication(ctx, slug)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenantIDs []uint
		if err := tx.Model(&model.Tenant{}).
			Where("application_id = ?", app.ID).Pluck("id", &tenantIDs).Error; err != nil {
			return err
		}
		for _, tnID := range tenantIDs {
			if err := s.WithTx(tx).deleteTenantContents(tnID); err != nil {
				return err
			}
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&model.Tenant{}).Error; err != nil {
			return err
		}
		return tx.Delete(app).Error
	})
}
