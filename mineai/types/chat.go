// mineai/types/chat.go
package types

// Message is one turn of the conversation as the client sends it.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// ChatRequest is the body of POST /chat.
// ConversationID is optional; when present the caller must own it.
type ChatRequest struct {
	Messages       []Message `json:"messages" validate:"required,min=1,max=100,dive"`
	ConversationID string    `json:"conversationId,omitempty" validate:"omitempty,uuid"`
}

// RetrievedChunk is a similarity-search hit joined to its parent document.
// Built per request, never persisted.
type RetrievedChunk struct {
	Content       string
	DocumentTitle string
	PageNumber    *int
	Similarity    float64
}

// Source is the citation surface of a RetrievedChunk, serialized into the
// X-Sources response header for the UI.
type Source struct {
	Title string `json:"title"`
	Page  *int   `json:"page"`
}
