package model

import (
	"time"
)

// Role groups permissions together and can be assigned to users. The name is
// unique within the owning tenant.
type Role struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex:idx_tenant_role_name;not null"`
	TenantID    uint      `json:"tenant_id" gorm:"uniqueIndex:idx_tenant_role_name;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tenant      Tenant       `json:"-" gorm:"foreignKey:TenantID"`
	Users       []User       `json:"users,omitempty" gorm:"many2many:user_roles"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
}
