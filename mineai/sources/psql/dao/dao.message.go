package dao

import (
	"context"

	"mineai/mineai/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

func (dao *MessageDAO) SaveMessage(ctx context.Context, conversationID string, role, content string) (*models.Message, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, err
	}
	msg := models.Message{ConversationID: cid, Role: role, Content: content}
	if err := dao.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *MessageDAO) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
