package model

import (
	"time"
)

// SiteSetting is an admin-editable key/value configuration entry
// (site title, welcome text, feature toggles and the like).
type SiteSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	UpdatedBy   *uint     `json:"updated_by"`
	CreatedAt   time.Time `json:"created_date"`
	UpdatedAt   time.Time `json:"updated_date"`
}

// TableName specifies the table name for SiteSetting
func (SiteSetting) TableName() string {
	return "site_settings"
}
