package model

import (
	"time"
)

// Tenant is the second level of partitioning, inside an application. It owns
// the users, roles and permissions created under it.
//
// The slug is unique per application, not globally: the composite index over
// (application_id, slug) is the backstop for the create/rename pre-checks in
// the store.
type Tenant struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Slug          string    `json:"slug" gorm:"type:varchar(255);uniqueIndex:idx_app_tenant_slug;not null"`
	ApplicationID uint      `json:"application_id" gorm:"uniqueIndex:idx_app_tenant_slug;not null"`
	Title         string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Description   string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Application Application  `json:"-" gorm:"foreignKey:ApplicationID"`
	Users       []User       `json:"users,omitempty" gorm:"foreignKey:TenantID"`
	Roles       []Role       `json:"roles,omitempty" gorm:"foreignKey:TenantID"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"foreignKey:TenantID"`
}
