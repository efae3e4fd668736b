// mineai/services/rag/retriever.go
package rag

import (
	"context"
	"time"

	"mineai/mineai/types"
	"mineai/mineai/utils/logging"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const (
	// MatchThreshold is the minimum cosine similarity for a chunk to count
	// as relevant; MatchCount caps how many chunks enter the prompt.
	MatchThreshold = 0.7
	MatchCount     = 5

	retrieveTimeout = 10 * time.Second
)

// Querier is the slice of pgxpool.Pool the retriever needs; tests supply
// their own.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Retriever runs similarity search over document_chunks using the elevated
// read-only pool. Chunk data is not per-user, so the caller-scoped handle
// never touches it, and this pool never reaches message-writing code.
type Retriever struct {
	pool Querier
}

func NewRetriever(pool Querier) *Retriever {
	return &Retriever{pool: pool}
}

type chunkHit struct {
	documentID string
	content    string
	pageNumber *int
	similarity float64
}

// Retrieve returns chunks at or above threshold, best first, capped at topK,
// each joined to its document title. An empty query vector means the
// embedding step already failed, so retrieval is skipped outright. Search
// errors degrade to an empty result: RAG failure must never block the turn.
func (r *Retriever) Retrieve(ctx context.Context, queryEmbedding []float32, threshold float64, topK int) []types.RetrievedChunk {
	if len(queryEmbedding) == 0 {
		logging.AppLogger.Info("no query embedding, skipping retrieval")
		return nil
	}
	defer logging.LogDuration(ctx, "rag_retrieve")()

	ctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()

	vec := pgvector.NewVector(queryEmbedding)
	rows, err := r.pool.Query(ctx,
		`SELECT document_id::text, content, page_number, 1 - (embedding <=> $1) AS similarity
		 FROM document_chunks
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, threshold, topK,
	)
	if err != nil {
		logging.ErrorLogger.Error("chunk search failed", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var hits []chunkHit
	for rows.Next() {
		var h chunkHit
		if err := rows.Scan(&h.documentID, &h.content, &h.pageNumber, &h.similarity); err != nil {
			logging.ErrorLogger.Error("chunk scan failed", zap.Error(err))
			return nil
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		logging.ErrorLogger.Error("chunk search failed", zap.Error(err))
		return nil
	}
	if len(hits) == 0 {
		logging.AppLogger.Info("no relevant chunks found")
		return nil
	}

	titles := r.documentTitles(ctx, hits)

	chunks := make([]types.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		title, ok := titles[h.documentID]
		if !ok {
			// document row may be gone; the chunk is still usable
			title = "Unknown Document"
		}
		chunks = append(chunks, types.RetrievedChunk{
			Content:       h.content,
			DocumentTitle: title,
			PageNumber:    h.pageNumber,
			Similarity:    h.similarity,
		})
	}
	logging.AppLogger.Info("retrieved context", zap.Int("chunks", len(chunks)))
	return chunks
}

// documentTitles resolves all distinct document ids in one query instead of
// a round trip per chunk.
func (r *Retriever) documentTitles(ctx context.Context, hits []chunkHit) map[string]string {
	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if !seen[h.documentID] {
			seen[h.documentID] = true
			ids = append(ids, h.documentID)
		}
	}

	titles := make(map[string]string, len(ids))
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, title FROM documents WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		logging.ErrorLogger.Error("document title lookup failed", zap.Error(err))
		return titles
	}
	defer rows.Close()
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			logging.ErrorLogger.Error("document title scan failed", zap.Error(err))
			return titles
		}
		titles[id] = title
	}
	return titles
}
