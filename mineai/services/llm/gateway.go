// mineai/services/llm/gateway.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mineai/mineai/types"
	httputils "mineai/mineai/utils/http"
	"mineai/mineai/utils/logging"

	"go.uber.org/zap"
)

const ChatModel = "google/gemini-2.5-flash"

// Upstream failure classification. The chat handler maps these onto the
// 429/402/500 responses the UI expects.
var (
	ErrRateLimited     = errors.New("ai gateway rate limited")
	ErrPaymentRequired = errors.New("ai gateway payment required")
	ErrUpstream        = errors.New("ai gateway error")
)

type GatewayClient struct {
	baseURL string
	apiKey  string
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{baseURL: baseURL, apiKey: apiKey}
}

type chatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []types.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

// StreamChat sends the composed message list with streaming enabled and
// returns the raw upstream body. The relay never parses the event framing;
// the body is forwarded to the caller byte for byte. Callers must Close it.
func (c *GatewayClient) StreamChat(ctx context.Context, messages []types.Message) (io.ReadCloser, error) {
	defer logging.LogDuration(ctx, "gateway_stream_chat")()

	resp, err := httputils.PostStream(ctx, c.baseURL+"/chat/completions", c.apiKey, chatCompletionRequest{
		Model:    ChatModel,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case http.StatusPaymentRequired:
			return nil, ErrPaymentRequired
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logging.ErrorLogger.Error("ai gateway error",
			zap.Int("status", resp.StatusCode), zap.String("body", string(b)))
		return nil, fmt.Errorf("%w: status %s", ErrUpstream, resp.Status)
	}

	return resp.Body, nil
}
