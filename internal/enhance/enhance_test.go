package enhance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cons/internal/enhance"
	"cons/internal/llmclient"
)

func TestEnhanceParsesSuccessResponse(t *testing.T) {
	fake := &llmclient.FakeClient{Text: `{"enhanced_content": "Interesting pattern in asynchronous Rust code.", "confidence": 0.95}`}
	e := enhance.New(fake)

	got, err := e.Enhance(context.Background(), "m", "interesting pattern in async rust")
	require.NoError(t, err)
	assert.Equal(t, "Interesting pattern in asynchronous Rust code.", got.EnhancedContent)
	assert.Equal(t, 0.95, got.Confidence)
}

func TestEnhancePropagatesClientError(t *testing.T) {
	fake := &llmclient.FakeClient{Err: errors.New("network down")}
	e := enhance.New(fake)

	_, err := e.Enhance(context.Background(), "m", "content")
	require.Error(t, err)
}

func TestEnhanceReturnsErrorOnUnparsableResponse(t *testing.T) {
	fake := &llmclient.FakeClient{Text: "not json at all"}
	e := enhance.New(fake)

	_, err := e.Enhance(context.Background(), "m", "content")
	require.Error(t, err)
}

func TestEnhanceClampsConfidence(t *testing.T) {
	fake := &llmclient.FakeClient{Text: `{"enhanced_content": "clear already", "confidence": 2.5}`}
	e := enhance.New(fake)

	got, err := e.Enhance(context.Background(), "m", "clear already")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Confidence)
}
