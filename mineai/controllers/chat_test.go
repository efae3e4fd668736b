package controllers

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"mineai/mineai/services/llm"
	"mineai/mineai/sources/psql/dao"
	"mineai/mineai/sources/psql/models"
	"mineai/mineai/types"
	"mineai/mineai/utils/logging"
)

type fakeEmbedder struct {
	vec   []float32
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) []float32 {
	f.calls++
	return f.vec
}

type fakeRetriever struct {
	chunks []types.RetrievedChunk
	gotVec []float32
	calls  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, queryEmbedding []float32, threshold float64, topK int) []types.RetrievedChunk {
	f.calls++
	f.gotVec = queryEmbedding
	if len(queryEmbedding) == 0 {
		return nil
	}
	return f.chunks
}

type fakeStreamer struct {
	body        string
	err         error
	gotMessages []types.Message
	calls       int
}

func (f *fakeStreamer) StreamChat(ctx context.Context, messages []types.Message) (io.ReadCloser, error) {
	f.calls++
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type fakeConvStore struct {
	ownerErr error
	touched  []string
}

func (f *fakeConvStore) VerifyOwnership(ctx context.Context, userID, conversationID string) error {
	return f.ownerErr
}

func (f *fakeConvStore) Touch(ctx context.Context, conversationID string) error {
	f.touched = append(f.touched, conversationID)
	return nil
}

type savedMessage struct {
	conversationID, role, content string
}

type fakeMsgStore struct {
	saved []savedMessage
	err   error
}

func (f *fakeMsgStore) SaveMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	f.saved = append(f.saved, savedMessage{conversationID, role, content})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{Role: role, Content: content}, nil
}

type fixture struct {
	embedder  *fakeEmbedder
	retriever *fakeRetriever
	streamer  *fakeStreamer
	convs     *fakeConvStore
	msgs      *fakeMsgStore
	ctrl      *ChatController
}

func newFixture() *fixture {
	logging.InitTestLogger()
	f := &fixture{
		embedder:  &fakeEmbedder{vec: []float32{0.1, 0.2}},
		retriever: &fakeRetriever{},
		streamer:  &fakeStreamer{body: "data: hi\n\n"},
		convs:     &fakeConvStore{},
		msgs:      &fakeMsgStore{},
	}
	f.ctrl = NewChatController(f.embedder, f.retriever, f.streamer, f.convs, f.msgs)
	return f
}

func userMessages(contents ...string) []types.Message {
	msgs := make([]types.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, types.Message{Role: "user", Content: c})
	}
	return msgs
}

const validConvID = "3b1c2a94-9f6e-4d2c-9a8e-1f2b3c4d5e6f"

func TestRunRejectsInvalidInput(t *testing.T) {
	many := make([]types.Message, 101)
	for i := range many {
		many[i] = types.Message{Role: "user", Content: "hi"}
	}

	cases := []struct {
		name string
		req  types.ChatRequest
	}{
		{"no messages", types.ChatRequest{}},
		{"too many messages", types.ChatRequest{Messages: many}},
		{"empty content", types.ChatRequest{Messages: []types.Message{{Role: "user", Content: ""}}}},
		{"oversize content", types.ChatRequest{Messages: userMessages(strings.Repeat("a", 10001))}},
		{"bad role", types.ChatRequest{Messages: []types.Message{{Role: "wizard", Content: "hi"}}}},
		{"bad conversation id", types.ChatRequest{Messages: userMessages("hi"), ConversationID: "not-a-uuid"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, _, err := f.ctrl.Run(context.Background(), "user-1", tc.req)

			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			// validation failure must precede every external call
			if f.embedder.calls != 0 || f.retriever.calls != 0 || f.streamer.calls != 0 || len(f.msgs.saved) != 0 {
				t.Error("external call made for invalid input")
			}
		})
	}
}

func TestRunBoundaryContentLengthAccepted(t *testing.T) {
	f := newFixture()
	_, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages: userMessages(strings.Repeat("a", 10000)),
	})
	if err != nil {
		t.Fatalf("10000-char content must pass validation, got %v", err)
	}
}

func TestRunForbiddenConversation(t *testing.T) {
	f := newFixture()
	f.convs.ownerErr = dao.ErrNotOwned

	_, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages:       userMessages("What is the royalty rate for iron ore?"),
		ConversationID: validConvID,
	})
	if !errors.Is(err, dao.ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if f.embedder.calls != 0 || f.streamer.calls != 0 || len(f.msgs.saved) != 0 {
		t.Error("pipeline ran past a failed ownership check")
	}
}

func TestRunEmptyEmbeddingMeansNoContext(t *testing.T) {
	f := newFixture()
	f.embedder.vec = nil
	f.retriever.chunks = []types.RetrievedChunk{{Content: "c", DocumentTitle: "D"}}

	body, sources, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages: userMessages("What is the royalty rate for iron ore?"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}
	system := f.streamer.gotMessages[0]
	if system.Role != "system" {
		t.Fatalf("first message must be the system prompt, got role %q", system.Role)
	}
	if strings.Contains(system.Content, "RELEVANT CONTEXT FROM KNOWLEDGE BASE") {
		t.Error("system prompt must omit the context block when embedding failed")
	}
}

func TestRunWithRetrievedChunks(t *testing.T) {
	page := 12
	f := newFixture()
	f.retriever.chunks = []types.RetrievedChunk{
		{Content: "Royalty is 15%.", DocumentTitle: "MMDR Act", PageNumber: &page, Similarity: 0.9},
		{Content: "DMF applies.", DocumentTitle: "Mines Act", Similarity: 0.8},
	}

	history := userMessages("What is the royalty rate for iron ore?")
	body, sources, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{Messages: history})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Title != "MMDR Act" || *sources[0].Page != 12 {
		t.Errorf("first source mismatch: %+v", sources[0])
	}
	if sources[1].Title != "Mines Act" || sources[1].Page != nil {
		t.Errorf("second source mismatch: %+v", sources[1])
	}

	if len(f.streamer.gotMessages) != len(history)+1 {
		t.Fatalf("expected system + history, got %d messages", len(f.streamer.gotMessages))
	}
	system := f.streamer.gotMessages[0].Content
	for _, want := range []string{"MMDR Act", "(Page 12)", "Mines Act", "Royalty is 15%."} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	got, _ := io.ReadAll(body)
	if string(got) != "data: hi\n\n" {
		t.Errorf("stream body modified: %q", got)
	}
}

func TestRunRetrieverGetsQueryEmbedding(t *testing.T) {
	f := newFixture()
	_, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages: []types.Message{
			{Role: "user", Content: "old question"},
			{Role: "assistant", Content: "old answer"},
			{Role: "user", Content: "latest question"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls != 1 {
		t.Errorf("expected one embedding call, got %d", f.embedder.calls)
	}
	if len(f.retriever.gotVec) != 2 {
		t.Errorf("retriever did not receive the query embedding: %v", f.retriever.gotVec)
	}
}

func TestRunUpstreamErrorNothingPersisted(t *testing.T) {
	f := newFixture()
	f.streamer.err = llm.ErrRateLimited

	_, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages:       userMessages("query"),
		ConversationID: validConvID,
	})
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if len(f.msgs.saved) != 0 {
		t.Error("message persisted despite upstream failure")
	}
}

func TestRunPersistsUserMessageOnce(t *testing.T) {
	f := newFixture()
	body, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages:       userMessages("first", "latest"),
		ConversationID: validConvID,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if len(f.msgs.saved) != 1 {
		t.Fatalf("expected exactly one saved message, got %d", len(f.msgs.saved))
	}
	saved := f.msgs.saved[0]
	if saved.conversationID != validConvID || saved.role != "user" || saved.content != "latest" {
		t.Errorf("unexpected saved message: %+v", saved)
	}
	if len(f.convs.touched) != 1 {
		t.Errorf("conversation not touched after save")
	}
}

func TestRunNoConversationNoPersistence(t *testing.T) {
	f := newFixture()
	body, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages: userMessages("query"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if len(f.msgs.saved) != 0 {
		t.Error("message saved without a conversation id")
	}
}

func TestRunSaveFailureDoesNotFailTurn(t *testing.T) {
	f := newFixture()
	f.msgs.err = errors.New("db down")

	body, _, err := f.ctrl.Run(context.Background(), "user-1", types.ChatRequest{
		Messages:       userMessages("query"),
		ConversationID: validConvID,
	})
	if err != nil {
		t.Fatalf("persistence failure must not fail the turn, got %v", err)
	}
	body.Close()
}
