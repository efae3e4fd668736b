// mineai/services/rag/context.go
package rag

import (
	"fmt"
	"strings"

	"mineai/mineai/types"
)

// BuildContextString renders retrieved chunks into the delimited block that
// gets appended to the system prompt. The explicit start/end markers let the
// model tell retrieved context apart from its instructions. Empty input
// yields an empty string and the prompt carries no context block at all.
func BuildContextString(chunks []types.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		pageInfo := ""
		if chunk.PageNumber != nil {
			pageInfo = fmt.Sprintf(" (Page %d)", *chunk.PageNumber)
		}
		parts = append(parts, fmt.Sprintf("[Source %d: %s%s]\n%s", i+1, chunk.DocumentTitle, pageInfo, chunk.Content))
	}

	return "\n\n--- RELEVANT CONTEXT FROM KNOWLEDGE BASE ---\n" +
		strings.Join(parts, "\n\n") +
		"\n--- END CONTEXT ---\n"
}

// SourcesFromChunks projects chunks onto the {title, page} pairs serialized
// into the X-Sources header, one per chunk in the same order.
func SourcesFromChunks(chunks []types.RetrievedChunk) []types.Source {
	sources := make([]types.Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, types.Source{
			Title: chunk.DocumentTitle,
			Page:  chunk.PageNumber,
		})
	}
	return sources
}
