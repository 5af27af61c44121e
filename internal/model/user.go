package model

import (
	"time"
)

// User is a principal that can authenticate. The name is unique within the
// owning tenant. The password holds an opaque credential-verifier hash and
// is nil for users authenticated by an external system.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex:idx_tenant_user_name;not null"`
	TenantID    uint      `json:"tenant_id" gorm:"uniqueIndex:idx_tenant_user_name;not null"`
	Password    *string   `json:"-" gorm:"type:varchar(255)"`
	Suspended   bool      `json:"suspended" gorm:"default:false;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
	Roles  []Role `json:"roles,omitempty" gorm:"many2many:user_roles"`
}

// PermissionNames returns the union of the permission names of all roles
// assigned to the user. Roles and their permissions must be preloaded.
func (u *User) PermissionNames() map[string]struct{} {
	perms := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			perms[perm.Name] = struct{}{}
		}
	}
	return perms
}
