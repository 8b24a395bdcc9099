package model

import (
	"time"
)

// ResourceCategory groups items on the community resources page
type ResourceCategory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_date"`

	Items []ResourceItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (ResourceCategory) TableName() string {
	return "resource_categories"
}

// QuickAccessItem is a pinned contact tile on the resources page
type QuickAccessItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Identifier   string    `gorm:"uniqueIndex;not null;size:50" json:"identifier"`
	Title        string    `gorm:"not null;size:100" json:"title"`
	Subtitle     string    `gorm:"not null;size:100" json:"subtitle"`
	Phone        string    `gorm:"not null;size:20" json:"phone"`
	Color        string    `gorm:"not null;size:20;default:'blue'" json:"color"`
	Icon         string    `gorm:"not null;size:50;default:'building'" json:"icon"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_date"`
	UpdatedAt    time.Time `json:"updated_date"`
}

func (QuickAccessItem) TableName() string {
	return "quick_access_items"
}

// ResourceItem is a single listed resource (name, contact, link)
type ResourceItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CategoryID   uint      `gorm:"not null;index" json:"category_id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Phone        string    `gorm:"size:20" json:"phone"`
	URL          string    `gorm:"size:500" json:"url"`
	Address      string    `gorm:"size:255" json:"address"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_date"`
	UpdatedAt    time.Time `json:"updated_date"`
}

func (ResourceItem) TableName() string {
	return "resource_items"
}
