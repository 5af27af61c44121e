package model

import (
	"time"
)

// Permission is a named capability, by convention `resource:action`. The
// service assigns no meaning to the name; the applications using it do. The
// name is unique within the owning tenant.
type Permission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex:idx_tenant_perm_name;not null"`
	TenantID    uint      `json:"tenant_id" gorm:"uniqueIndex:idx_tenant_perm_name;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
	Roles  []Role `json:"roles,omitempty" gorm:"many2many:role_permissions"`
}
