package autotag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cons/internal/autotag"
	"cons/internal/llmclient"
)

func TestGenerateTagsParsesAndNormalizes(t *testing.T) {
	fake := &llmclient.FakeClient{Text: "Sure, here you go:\n```json\n{\"Rust\": 0.9, \"Async Programming\": 1.4, \"  \": 0.5}\n```\n"}
	tagger := autotag.New(fake)

	got := tagger.GenerateTags(context.Background(), "test-model", "an interesting pattern in async rust")

	require.Contains(t, got, "rust")
	assert.Equal(t, 0.9, got["rust"])
	require.Contains(t, got, "async-programming")
	assert.Equal(t, 1.0, got["async-programming"], "confidence must be clamped to 1.0")
	assert.NotContains(t, got, "", "empty normalized keys must be dropped")
	require.Len(t, fake.Calls, 1)
}

func TestGenerateTagsAbsorbsClientError(t *testing.T) {
	fake := &llmclient.FakeClient{Err: assertErr{}}
	tagger := autotag.New(fake)

	got := tagger.GenerateTags(context.Background(), "m", "content")
	assert.Empty(t, got)
}

func TestGenerateTagsAbsorbsUnparsableResponse(t *testing.T) {
	fake := &llmclient.FakeClient{Text: "I refuse to answer in JSON today."}
	tagger := autotag.New(fake)

	got := tagger.GenerateTags(context.Background(), "m", "content")
	assert.Empty(t, got)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
