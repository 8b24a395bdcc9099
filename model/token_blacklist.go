package model

import (
	"time"
)

// TokenBlacklist stores revoked JWT token IDs (jti). A blacklisted jti
// is rejected by the auth middleware even when the token itself is
// still cryptographically valid; this is the only pre-expiry logout
// mechanism, since JWTs are otherwise stateless.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"column:jti;uniqueIndex;not null;size:36" json:"jti"`
	TokenType string    `gorm:"type:varchar(10);not null" json:"token_type"` // access
	UserID    uint      `gorm:"index" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"` // logout, security, admin_revoke
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for TokenBlacklist
func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
