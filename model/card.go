package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name into a URL-friendly slug.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Tag is a label attached to business cards
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:500" json:"name"`
	CreatedAt time.Time `json:"created_date"`

	Cards []Card `gorm:"many2many:card_tags;" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}

// Card represents a business listing in the directory. Unapproved
// cards are pending submissions awaiting admin moderation.
type Card struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"not null;index;size:255" json:"name"`
	Description        string     `gorm:"type:text" json:"description"`
	WebsiteURL         string     `gorm:"size:255" json:"website_url"`
	PhoneNumber        string     `gorm:"size:20" json:"phone_number"`
	Email              string     `gorm:"size:100" json:"email"`
	Address            string     `gorm:"size:255" json:"address"`
	AddressOverrideURL string     `gorm:"size:500" json:"address_override_url"`
	ContactName        string     `gorm:"size:100" json:"contact_name"`
	Featured           bool       `gorm:"default:false" json:"featured"`
	ImageURL           string     `gorm:"size:255" json:"image_url"`
	CreatedBy          *uint      `json:"-"`
	Approved           bool       `gorm:"default:true;index" json:"approved"`
	ApprovedBy         *uint      `json:"-"`
	ApprovedDate       *time.Time `json:"approved_date"`
	ReviewNotes        string     `gorm:"type:text" json:"-"`
	CreatedAt          time.Time  `json:"created_date"`
	UpdatedAt          time.Time  `json:"updated_date"`

	Tags     []Tag `gorm:"many2many:card_tags;" json:"tags"`
	Creator  *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (Card) TableName() string {
	return "cards"
}

// Slug returns the URL-friendly slug derived from the business name.
func (c *Card) Slug() string {
	return Slugify(c.Name)
}

// ShareURL returns the shareable path for this business.
func (c *Card) ShareURL() string {
	return fmt.Sprintf("/business/%d/%s", c.ID, c.Slug())
}

// Card modification statuses
const (
	ModificationPending  = "pending"
	ModificationApproved = "approved"
	ModificationRejected = "rejected"
)

// CardModification is a user-suggested edit to an existing card,
// held for admin review before being applied.
type CardModification struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	CardID             uint       `gorm:"not null;index" json:"card_id"`
	Name               string     `gorm:"not null;size:255" json:"name"`
	Description        string     `gorm:"type:text" json:"description"`
	WebsiteURL         string     `gorm:"size:255" json:"website_url"`
	PhoneNumber        string     `gorm:"size:20" json:"phone_number"`
	Email              string     `gorm:"size:100" json:"email"`
	Address            string     `gorm:"size:255" json:"address"`
	AddressOverrideURL string     `gorm:"size:500" json:"address_override_url"`
	ContactName        string     `gorm:"size:100" json:"contact_name"`
	ImageURL           string     `gorm:"size:255" json:"image_url"`
	TagsText           string     `gorm:"type:text" json:"tags_text"`
	Status             string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SubmittedBy        uint       `gorm:"not null" json:"submitted_by"`
	ReviewedBy         *uint      `json:"reviewed_by"`
	ReviewNotes        string     `gorm:"type:text" json:"review_notes"`
	CreatedAt          time.Time  `json:"created_date"`
	ReviewedDate       *time.Time `json:"reviewed_date"`

	Card      Card  `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"-"`
	Submitter *User `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}

func (CardModification) TableName() string {
	return "card_modifications"
}
