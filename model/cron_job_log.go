package model

import (
	"time"
)

// Cron job statuses
const (
	CronJobRunning   = "running"
	CronJobCompleted = "completed"
	CronJobFailed    = "failed"
)

// CronJobLog records each scheduled maintenance job run
type CronJobLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobName     string     `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status      string     `gorm:"type:varchar(20);not null" json:"status"`
	Message     string     `gorm:"type:text" json:"message"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specifies the table name for CronJobLog
func (CronJobLog) TableName() string {
	return "cron_job_logs"
}
