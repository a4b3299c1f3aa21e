// Package enhance implements NoteEnhancer: prompting an LlmClient to
// expand abbreviations and clarify implicit context in a captured
// note, without adding new information. Unlike AutoTagger and
// HierarchySuggester, a parse failure here is returned as an error:
// it is the capture pipeline's job to absorb it, not this package's.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cons/internal/llmclient"
	"cons/internal/llmparse"
)

// Result is a successful enhancement.
type Result struct {
	EnhancedContent string
	Confidence      float64
}

// Enhancer expands and clarifies note content via an LLM.
type Enhancer struct {
	client llmclient.Client
}

// New builds an Enhancer over client.
func New(client llmclient.Client) *Enhancer {
	return &Enhancer{client: client}
}

// Enhance prompts the LLM with content and returns its expanded form.
// LLM client errors are returned wrapped, so errors.As still reaches
// the llmclient error kind and callers can tell a network failure from
// a parse failure; a malformed response yields a distinct parse error.
func (e *Enhancer) Enhance(ctx context.Context, model, content string) (Result, error) {
	raw, err := e.client.Generate(ctx, model, buildPrompt(content))
	if err != nil {
		return Result{}, fmt.Errorf("enhance: generate: %w", err)
	}

	result, err := parseResult(raw)
	if err != nil {
		return Result{}, fmt.Errorf("enhance: parse: %w", err)
	}
	return result, nil
}

func buildPrompt(content string) string {
	var b strings.Builder
	b.WriteString("You are clarifying a personal note so it reads clearly out of context, without changing its meaning.\n")
	b.WriteString("Expand abbreviations, complete sentence fragments, and make implicit context explicit.\n")
	b.WriteString("Add no new information and no opinions. If the note is already clear and complete, return it unchanged with high confidence.\n")
	b.WriteString("Respond with a single JSON object: {\"enhanced_content\": string, \"confidence\": number between 0 and 1}. No prose, no markdown fences.\n\n")
	b.WriteString("Note:\n")
	b.WriteString(content)
	return b.String()
}

type enhanceResponse struct {
	EnhancedContent string  `json:"enhanced_content"`
	Confidence      float64 `json:"confidence"`
}

func parseResult(raw string) (Result, error) {
	obj := llmparse.ExtractJSONObject(raw)
	if obj == "" {
		return Result{}, fmt.Errorf("no JSON object found in response")
	}

	var decoded enhanceResponse
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		return Result{}, fmt.Errorf("decode enhancement: %w", err)
	}
	if strings.TrimSpace(decoded.EnhancedContent) == "" {
		return Result{}, fmt.Errorf("enhancement response had empty enhanced_content")
	}

	return Result{
		EnhancedContent: decoded.EnhancedContent,
		Confidence:      llmparse.Clamp01(decoded.Confidence),
	}, nil
}
