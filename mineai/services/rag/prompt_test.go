package rag

import (
	"strings"
	"testing"

	"mineai/mineai/types"
)

// The UI pattern-matches on these lines, so the tests pin the exact text.
func TestPromptContractStrings(t *testing.T) {
	prompt := ComposeSystemPrompt("")

	refusal := "I can only answer questions related to mining laws, DGMS standards, environmental compliance, and mining regulations."
	if RefusalMessage != refusal {
		t.Errorf("refusal string drifted: %q", RefusalMessage)
	}
	noContext := "No mining regulation found for this query."
	if NoContextMessage != noContext {
		t.Errorf("no-context string drifted: %q", NoContextMessage)
	}
	if !strings.Contains(prompt, `"`+refusal+`"`) {
		t.Error("prompt does not contain the quoted refusal instruction")
	}
	if !strings.Contains(prompt, `"`+noContext+`"`) {
		t.Error("prompt does not contain the quoted no-context instruction")
	}
	if !strings.Contains(prompt, `Format citations like: "According to [Document Name], Section X (Page Y)..."`) {
		t.Error("prompt does not contain the citation format instruction")
	}
}

func TestComposeWithoutContextHasNoBlock(t *testing.T) {
	prompt := ComposeSystemPrompt("")
	if strings.Contains(prompt, "RELEVANT CONTEXT FROM KNOWLEDGE BASE") {
		t.Error("empty context must not add a context block")
	}
}

func TestComposeAppendsContextVerbatim(t *testing.T) {
	ctxBlock := BuildContextString([]types.RetrievedChunk{
		{Content: "chunk text", DocumentTitle: "MMDR Act", PageNumber: intPtr(7)},
	})
	prompt := ComposeSystemPrompt(ctxBlock)
	if !strings.HasSuffix(prompt, ctxBlock) {
		t.Error("context block must be appended verbatim at the end")
	}
	if !strings.Contains(prompt, "[Source 1: MMDR Act (Page 7)]") {
		t.Error("prompt missing source annotation")
	}
}

func TestComposeIsPure(t *testing.T) {
	if ComposeSystemPrompt("x") != ComposeSystemPrompt("x") {
		t.Error("composer is not pure for identical input")
	}
}
