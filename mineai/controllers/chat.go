// mineai/controllers/chat.go
package controllers

import (
	"context"
	"io"

	"mineai/mineai/services/rag"
	"mineai/mineai/sources/psql/models"
	"mineai/mineai/types"
	"mineai/mineai/utils/logging"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Consumer-side interfaces so tests can fake the external hops.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type ContextRetriever interface {
	Retrieve(ctx context.Context, queryEmbedding []float32, threshold float64, topK int) []types.RetrievedChunk
}

type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []types.Message) (io.ReadCloser, error)
}

type ConversationStore interface {
	VerifyOwnership(ctx context.Context, userID, conversationID string) error
	Touch(ctx context.Context, conversationID string) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error)
}

// InvalidInputError carries field-level details for the 400 response body.
type InvalidInputError struct {
	Details string
}

func (e *InvalidInputError) Error() string { return "Invalid input: " + e.Details }

type ChatController struct {
	validate  *validator.Validate
	embedder  Embedder
	retriever ContextRetriever
	streamer  ChatStreamer
	convDAO   ConversationStore
	msgDAO    MessageStore
}

func NewChatController(embedder Embedder, retriever ContextRetriever, streamer ChatStreamer, convDAO ConversationStore, msgDAO MessageStore) *ChatController {
	return &ChatController{
		validate:  validator.New(),
		embedder:  embedder,
		retriever: retriever,
		streamer:  streamer,
		convDAO:   convDAO,
		msgDAO:    msgDAO,
	}
}

// Validate checks the request shape without running the turn. The HTTP
// route calls it before looking at credentials so a malformed request is
// reported as such even when the caller is also unauthenticated.
func (c *ChatController) Validate(req types.ChatRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return &InvalidInputError{Details: err.Error()}
	}
	return nil
}

// Run executes one chat turn up to the upstream call: validate, authorize
// conversation ownership, embed the latest user message, retrieve and format
// context, compose the system prompt, open the completion stream, persist the
// user's message. The returned body is the upstream stream, untouched; the
// route relays it byte for byte. Callers must Close it.
//
// Errors before the stream opens abort the whole turn. Embedding/retrieval
// failures are swallowed upstream of here and only degrade to zero context.
func (c *ChatController) Run(ctx context.Context, userID string, req types.ChatRequest) (io.ReadCloser, []types.Source, error) {
	defer logging.LogDuration(ctx, "chat_run")()

	if err := c.validate.Struct(req); err != nil {
		return nil, nil, &InvalidInputError{Details: err.Error()}
	}

	if req.ConversationID != "" {
		if err := c.convDAO.VerifyOwnership(ctx, userID, req.ConversationID); err != nil {
			return nil, nil, err
		}
	}

	chunks := c.retrieveForLatestQuery(ctx, req.Messages)
	contextString := rag.BuildContextString(chunks)
	sources := rag.SourcesFromChunks(chunks)

	messages := make([]types.Message, 0, len(req.Messages)+1)
	messages = append(messages, types.Message{Role: "system", Content: rag.ComposeSystemPrompt(contextString)})
	messages = append(messages, req.Messages...)

	body, err := c.streamer.StreamChat(ctx, messages)
	if err != nil {
		return nil, nil, err
	}

	// The turn has succeeded from the user's point of view once the stream
	// is open, so a failed insert is logged, never surfaced. At most one
	// write per request, and only after authorization passed.
	if req.ConversationID != "" {
		c.persistUserMessage(ctx, req)
	}

	return body, sources, nil
}

func (c *ChatController) retrieveForLatestQuery(ctx context.Context, messages []types.Message) []types.RetrievedChunk {
	var query string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			query = messages[i].Content
			break
		}
	}
	if query == "" {
		return nil
	}
	embedding := c.embedder.Embed(ctx, query)
	return c.retriever.Retrieve(ctx, embedding, rag.MatchThreshold, rag.MatchCount)
}

func (c *ChatController) persistUserMessage(ctx context.Context, req types.ChatRequest) {
	last := req.Messages[len(req.Messages)-1]
	if _, err := c.msgDAO.SaveMessage(ctx, req.ConversationID, last.Role, last.Content); err != nil {
		logging.ErrorLogger.Error("failed to save message",
			zap.String("conversation_id", req.ConversationID), zap.Error(err))
		return
	}
	if err := c.convDAO.Touch(ctx, req.ConversationID); err != nil {
		logging.ErrorLogger.Error("failed to touch conversation",
			zap.String("conversation_id", req.ConversationID), zap.Error(err))
	}
}
