// mineai/controllers/conversations.go
package controllers

import (
	"context"

	"mineai/mineai/sources/psql/models"
)

// ConversationRepo and MessageRepo widen the chat pipeline's stores with the
// listing/removal operations the sidebar needs; the DAOs satisfy both.
type ConversationRepo interface {
	ConversationStore
	Create(ctx context.Context, userID, title string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	Delete(ctx context.Context, userID, conversationID string) error
}

type MessageRepo interface {
	MessageStore
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
}

// ConversationController backs the sidebar: list/create/delete threads and
// fetch history. Every operation is scoped to the authenticated caller; a
// foreign or unknown conversation id is indistinguishable from not-owned.
type ConversationController struct {
	convDAO ConversationRepo
	msgDAO  MessageRepo
}

func NewConversationController(convDAO ConversationRepo, msgDAO MessageRepo) *ConversationController {
	return &ConversationController{convDAO: convDAO, msgDAO: msgDAO}
}

func (c *ConversationController) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	return c.convDAO.ListByUser(ctx, userID)
}

func (c *ConversationController) Create(ctx context.Context, userID, title string) (*models.Conversation, error) {
	if title == "" {
		title = "New Conversation"
	}
	return c.convDAO.Create(ctx, userID, title)
}

func (c *ConversationController) Delete(ctx context.Context, userID, conversationID string) error {
	return c.convDAO.Delete(ctx, userID, conversationID)
}

func (c *ConversationController) Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	if err := c.convDAO.VerifyOwnership(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return c.msgDAO.ListByConversation(ctx, conversationID)
}

// AppendMessage is how the client persists the assistant's reply after it
// has drained the stream (the server only ever writes the user side). The
// ownership check keeps a failed generation from ever landing in a foreign
// conversation.
func (c *ConversationController) AppendMessage(ctx context.Context, userID, conversationID, role, content string) (*models.Message, error) {
	if err := c.convDAO.VerifyOwnership(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msg, err := c.msgDAO.SaveMessage(ctx, conversationID, role, content)
	if err != nil {
		return nil, err
	}
	if err := c.convDAO.Touch(ctx, conversationID); err != nil {
		return nil, err
	}
	return msg, nil
}
