// mineai/services/llm/embeddings.go
package llm

import (
	"context"
	"time"

	httputils "mineai/mineai/utils/http"
	"mineai/mineai/utils/logging"

	"go.uber.org/zap"
)

const embeddingModel = "text-embedding-3-small"

// embedTimeout is deliberately short: a slow embedding provider should cost
// us retrieval quality, not chat availability.
const embedTimeout = 10 * time.Second

type EmbeddingClient struct {
	baseURL string
	apiKey  string
}

func NewEmbeddingClient(baseURL, apiKey string) *EmbeddingClient {
	return &EmbeddingClient{baseURL: baseURL, apiKey: apiKey}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed turns text into the gateway's fixed-width vector. Any failure
// (non-2xx, network, malformed payload) returns nil: the caller treats an
// empty vector as "skip retrieval". One attempt, no retries.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) []float32 {
	defer logging.LogDuration(ctx, "embedding_client_embed")()

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	var resp embeddingResponse
	err := httputils.PostJSON(ctx, c.baseURL+"/embeddings", c.apiKey, embeddingRequest{
		Model: embeddingModel,
		Input: text,
	}, &resp)
	if err != nil {
		logging.ErrorLogger.Error("embedding request failed", zap.Error(err))
		return nil
	}
	if len(resp.Data) == 0 {
		logging.ErrorLogger.Error("embedding response had no data")
		return nil
	}
	return resp.Data[0].Embedding
}
