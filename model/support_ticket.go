package model

import (
	"time"
)

// Support ticket statuses
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

// SupportTicket is a member-submitted issue handled by admins
type SupportTicket struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"not null;index;size:255" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Category     string     `gorm:"type:varchar(50);not null" json:"category"` // bug, account, content, other
	Status       string     `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Priority     string     `gorm:"type:varchar(20);default:'normal'" json:"priority"` // low, normal, high, urgent
	IsAnonymous  bool       `gorm:"default:false" json:"is_anonymous"`
	CreatedBy    uint       `gorm:"not null" json:"created_by"`
	AssignedTo   *uint      `json:"assigned_to"`
	CreatedAt    time.Time  `gorm:"index" json:"created_date"`
	UpdatedAt    time.Time  `json:"updated_date"`
	ResolvedDate *time.Time `json:"resolved_date"`
	ClosedDate   *time.Time `json:"closed_date"`

	Creator  *User                  `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Messages []SupportTicketMessage `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

// SupportTicketMessage is a reply on a ticket; internal notes are
// visible to admins only.
type SupportTicketMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TicketID       uint      `gorm:"not null;index" json:"ticket_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsInternalNote bool      `gorm:"default:false" json:"is_internal_note"`
	CreatedBy      uint      `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time `json:"created_date"`
	UpdatedAt      time.Time `json:"updated_date"`

	Author *User `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

func (SupportTicketMessage) TableName() string {
	return "support_ticket_messages"
}
