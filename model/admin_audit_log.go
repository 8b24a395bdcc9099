package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records every state-changing admin action for
// traceability. Old/new values are stored as JSON snapshots.
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(50);not null" json:"action"`
	Resource    string         `gorm:"type:varchar(50);not null;index" json:"resource"`
	ResourceID  uint           `json:"resource_id"`
	OldValue    datatypes.JSON `gorm:"type:jsonb" json:"old_value"`
	NewValue    datatypes.JSON `gorm:"type:jsonb" json:"new_value"`
	IPAddress   string         `gorm:"size:45" json:"ip_address"`
	UserAgent   string         `gorm:"size:255" json:"user_agent"`
	Description string         `gorm:"size:255" json:"description"`
	CreatedAt   time.Time      `gorm:"index" json:"created_date"`

	Admin User `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
