package model

import (
	"time"
)

// Help wanted post statuses
const (
	HelpWantedOpen   = "open"
	HelpWantedClosed = "closed"
)

// HelpWantedPost is a community request for services or assistance
type HelpWantedPost struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"not null;index;size:255" json:"title"`
	Description       string    `gorm:"type:text;not null" json:"description"`
	Category          string    `gorm:"type:varchar(50);not null" json:"category"` // services, goods, volunteer, other
	Status            string    `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Location          string    `gorm:"size:255" json:"location"`
	Budget            string    `gorm:"size:100" json:"budget"`
	ContactPreference string    `gorm:"type:varchar(50);default:'message'" json:"contact_preference"` // email, phone, message
	ReportCount       int       `gorm:"default:0;not null" json:"report_count"`
	CreatedBy         uint      `gorm:"not null" json:"created_by"`
	CreatedAt         time.Time `gorm:"index" json:"created_date"`
	UpdatedAt         time.Time `json:"updated_date"`

	Author   *User              `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
	Comments []HelpWantedComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

func (HelpWantedPost) TableName() string {
	return "help_wanted_posts"
}

// HelpWantedComment is a reply on a help-wanted post; ParentID links
// nested replies.
type HelpWantedComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"updated_date"`

	Author *User `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

func (HelpWantedComment) TableName() string {
	return "help_wanted_comments"
}
