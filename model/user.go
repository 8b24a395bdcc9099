package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin     = "admin"
	RoleSupporter = "supporter"
	RoleUser      = "user"
)

// User represents a registered community member
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_date"`
	UpdatedAt     time.Time      `json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Email         string         `gorm:"uniqueIndex;not null;size:120" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	FirstName     string         `gorm:"not null;size:50" json:"first_name"`
	LastName      string         `gorm:"not null;size:50" json:"last_name"`
	Role          string         `gorm:"type:varchar(20);default:'user'" json:"role"` // admin, supporter, user
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	IsSupporter   bool           `gorm:"default:false" json:"is_supporter"`
	LastLogin     *time.Time     `json:"last_login"`

	// Relationships
	RevokedTokens []TokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedCards  []Card           `gorm:"foreignKey:CreatedBy" json:"-"`
	Reviews       []Review         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
