// Package llmclient defines the one external boundary cons treats as
// a mockable capability: a client that turns (model, prompt) into raw
// text. Every component that talks to an LLM (AutoTagger, NoteEnhancer,
// HierarchySuggester) depends on this interface, never on a concrete
// transport, so tests can substitute FakeClient.
package llmclient

import "context"

// Client generates text from a model and a prompt. Implementations
// apply their own timeout and retry policy; callers only see the
// final result or one of the error kinds in errors.go.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
