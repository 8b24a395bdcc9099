package model

import (
	"time"
)

// ForumCategory groups discussion threads
type ForumCategory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Slug         string    `gorm:"uniqueIndex;not null;size:120" json:"slug"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedBy    uint      `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_date"`
	UpdatedAt    time.Time `json:"updated_date"`

	Threads []ForumThread `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ForumCategory) TableName() string {
	return "forum_categories"
}

// Category request statuses
const (
	CategoryRequestPending  = "pending"
	CategoryRequestApproved = "approved"
	CategoryRequestRejected = "rejected"
)

// ForumCategoryRequest is a member proposal for a new forum category
type ForumCategoryRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"not null;size:100" json:"name"`
	Description   string     `gorm:"type:text" json:"description"`
	Justification string     `gorm:"type:text" json:"justification"`
	Status        string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RequestedBy   uint       `gorm:"not null" json:"requested_by"`
	ReviewedBy    *uint      `json:"reviewed_by"`
	ReviewNotes   string     `gorm:"type:text" json:"review_notes"`
	CategoryID    *uint      `json:"category_id"`
	CreatedAt     time.Time  `json:"created_date"`
	ReviewedDate  *time.Time `json:"reviewed_date"`

	Requester *User `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
}

func (ForumCategoryRequest) TableName() string {
	return "forum_category_requests"
}

// ForumThread is a discussion topic within a category
type ForumThread struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Title       string    `gorm:"not null;index;size:255" json:"title"`
	Slug        string    `gorm:"not null;index;size:280" json:"slug"`
	IsPinned    bool      `gorm:"default:false" json:"is_pinned"`
	IsLocked    bool      `gorm:"default:false" json:"is_locked"`
	ReportCount int       `gorm:"default:0;not null" json:"report_count"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_date"`
	UpdatedAt   time.Time `json:"updated_date"`

	Category ForumCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Posts    []ForumPost   `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	Author   *User         `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

func (ForumThread) TableName() string {
	return "forum_threads"
}

// ForumPost is a single message within a thread. The first post holds
// the thread body.
type ForumPost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ThreadID    uint       `gorm:"not null;index" json:"thread_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsFirstPost bool       `gorm:"default:false" json:"is_first_post"`
	ReportCount int        `gorm:"default:0;not null" json:"report_count"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	EditedBy    *uint      `json:"edited_by"`
	EditedDate  *time.Time `json:"edited_date"`
	CreatedAt   time.Time  `json:"created_date"`
	UpdatedAt   time.Time  `json:"updated_date"`

	Thread ForumThread `gorm:"foreignKey:ThreadID" json:"-"`
	Author *User       `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

func (ForumPost) TableName() string {
	return "forum_posts"
}

// Forum report statuses
const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
)

// ForumReport flags a thread or post for moderator attention. PostID
// is nil for thread-level reports.
type ForumReport struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ThreadID        uint       `gorm:"not null;index" json:"thread_id"`
	PostID          *uint      `gorm:"index" json:"post_id"`
	Reason          string     `gorm:"type:varchar(50);not null" json:"reason"` // spam, abuse, off_topic, other
	Details         string     `gorm:"type:text" json:"details"`
	Status          string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReportedBy      uint       `gorm:"not null" json:"reported_by"`
	ReviewedBy      *uint      `json:"reviewed_by"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes"`
	CreatedAt       time.Time  `json:"created_date"`
	ReviewedDate    *time.Time `json:"reviewed_date"`

	Reporter *User `gorm:"foreignKey:ReportedBy" json:"reporter,omitempty"`
}

func (ForumReport) TableName() string {
	return "forum_reports"
}
