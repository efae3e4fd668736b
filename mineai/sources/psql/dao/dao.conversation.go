package dao

import (
	"context"
	"errors"

	"mineai/mineai/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotOwned covers both "conversation does not exist" and "owned by
// someone else" so callers cannot tell foreign ids from missing ones.
var ErrNotOwned = errors.New("conversation not found or access denied")

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

// VerifyOwnership confirms the conversation exists and belongs to userID.
func (dao *ConversationDAO) VerifyOwnership(ctx context.Context, userID string, conversationID string) error {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).
		Select("id").
		Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotOwned
	}
	return err
}

func (dao *ConversationDAO) Create(ctx context.Context, userID string, title string) (*models.Conversation, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	conv := models.Conversation{UserID: uid, Title: title}
	if err := dao.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (dao *ConversationDAO) Delete(ctx context.Context, userID string, conversationID string) error {
	res := dao.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.Conversation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotOwned
	}
	return nil
}

// Touch bumps updated_at so the conversation sorts to the top of the list.
func (dao *ConversationDAO) Touch(ctx context.Context, conversationID string) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
