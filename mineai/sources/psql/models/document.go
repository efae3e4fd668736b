package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Document and DocumentChunk are written by the ingestion pipeline and are
// strictly read-only to this service.
type Document struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title      string    `json:"title" gorm:"type:varchar(512);not null"`
	StorageKey string    `json:"-" gorm:"type:varchar(512)"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

type DocumentChunk struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID uuid.UUID       `json:"document_id" gorm:"type:uuid;not null;index"`
	Document   Document        `json:"-" gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE"`
	Content    string          `json:"content" gorm:"type:text;not null"`
	Embedding  pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	PageNumber *int            `json:"page_number"`
}
