package models

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are append-only; ordering within a conversation is CreatedAt.
type Message struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationID uuid.UUID    `json:"conversation_id" gorm:"type:uuid;not null;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
	Role           string       `json:"role" gorm:"type:varchar(50);not null"`
	Content        string       `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}
