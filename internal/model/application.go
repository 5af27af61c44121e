package model

import (
	"time"
)

// Application is the top level partition of the stored data. Every tenant,
// and through it every user, role and permission, belongs to exactly one
// application.
type Application struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Title       string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tenants []Tenant `json:"tenants,omitempty" gorm:"foreignKey:ApplicationID"`
}
