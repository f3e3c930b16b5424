package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose names the out-of-band action a single-use token proves.
type TokenPurpose string

const (
	TokenPurposeConfirmAccount TokenPurpose = "confirm_account"
	TokenPurposeResetPassword  TokenPurpose = "reset_password"
)

// Token is a single-use credential sent by email. It is deleted when consumed.
type Token struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Value     string       `json:"-" gorm:"uniqueIndex;not null"`
	UserID    uuid.UUID    `json:"userId" gorm:"type:uuid;not null;index"`
	Purpose   TokenPurpose `json:"purpose" gorm:"type:varchar(30);not null"`
	CreatedAt time.Time    `json:"createdAt" gorm:"not null;index"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Expired reports whether the token is older than ttl at now. A zero ttl
// never expires.
func (t *Token) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(t.CreatedAt) > ttl
}
