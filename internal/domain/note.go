package domain

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID    uuid.UUID `json:"task" gorm:"type:uuid;not null;index"`
	CreatedBy uuid.UUID `json:"createdBy" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}
