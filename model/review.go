package model

import (
	"time"
)

// Review is a user rating of a business card. One review per user per
// card; reviews accumulate reports and are hidden once flagged.
type Review struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CardID       uint       `gorm:"not null;uniqueIndex:idx_card_user" json:"card_id"`
	UserID       uint       `gorm:"not null;index;uniqueIndex:idx_card_user" json:"user_id"`
	Rating       int        `gorm:"not null" json:"rating"` // 1-5 stars
	Title        string     `gorm:"size:200" json:"title"`
	Comment      string     `gorm:"type:text" json:"comment"`
	Approved     bool       `gorm:"default:true;index" json:"approved"`
	ReportCount  int        `gorm:"default:0;not null" json:"report_count"`
	ApprovedBy   *uint      `json:"-"`
	ApprovedDate *time.Time `json:"approved_date"`
	CreatedAt    time.Time  `gorm:"index" json:"created_date"`
	UpdatedAt    time.Time  `json:"updated_date"`

	Card Card `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
