package capture_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cons/internal/alias"
	"cons/internal/autotag"
	"cons/internal/capture"
	"cons/internal/enhance"
	"cons/internal/llmclient"
	"cons/internal/service"
	"cons/internal/store"
)

func newPipeline(t *testing.T, client llmclient.Client) (*service.NoteService, *capture.Pipeline) {
	t.Helper()
	s, err := store.NewLocalStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc, err := service.New(s)
	require.NoError(t, err)

	p := capture.New(svc, autotag.New(client), enhance.New(client), alias.New(s), "test-model")
	return svc, p
}

// TestCaptureFailSafe is scenario 1 from the testable-properties list:
// the LLM always errors, but capture still durably stores the note
// with its manual tag intact.
func TestCaptureFailSafe(t *testing.T) {
	client := &llmclient.FakeClient{Err: errors.New("connection refused")}
	svc, p := newPipeline(t, client)

	id, err := p.Capture(context.Background(), "learning rust ownership model", []string{"rust"})
	require.NoError(t, err)
	require.NotZero(t, id)

	note, err := svc.Store().GetNote(id)
	require.NoError(t, err)
	assert.Equal(t, "learning rust ownership model", note.Content)
	assert.Nil(t, note.ContentEnhanced)
	require.Len(t, note.Assignments, 1)
	assert.Equal(t, "rust", note.Assignments[0].TagName)
}

func TestCaptureRejectsEmptyContent(t *testing.T) {
	_, p := newPipeline(t, &llmclient.FakeClient{Text: `{"enhanced_content":"x","confidence":0.5}`})

	_, err := p.Capture(context.Background(), "   ", nil)
	require.Error(t, err)
}

func TestCaptureAttachesEnhancementAndTags(t *testing.T) {
	client := &llmclient.SequenceClient{
		Responses: []string{
			`{"enhanced_content":"Learning Rust's ownership model for memory safety.","confidence":0.9}`,
			`{"rust":0.95,"memory-safety":0.8}`,
		},
	}
	svc, p := newPipeline(t, client)

	id, err := p.Capture(context.Background(), "rust ownership", nil)
	require.NoError(t, err)

	note, err := svc.Store().GetNote(id)
	require.NoError(t, err)
	require.NotNil(t, note.ContentEnhanced)
	assert.Equal(t, "Learning Rust's ownership model for memory safety.", *note.ContentEnhanced)
	require.Len(t, note.Assignments, 2)
}

// TestCaptureNoGoroutineLeak exercises the pipeline concurrently and
// asserts no goroutines escape the call - capture must not spawn
// anything it doesn't join before returning.
func TestCaptureNoGoroutineLeak(t *testing.T) {
	// Registered before newPipeline so it runs after the store cleanup
	// has closed the database and its connection goroutine.
	t.Cleanup(func() { goleak.VerifyNone(t) })

	client := &llmclient.SequenceClient{
		Responses: []string{`{"enhanced_content":"enhanced","confidence":0.6}`, `{"note":0.7}`},
	}
	svc, p := newPipeline(t, client)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			_, err := p.Capture(context.Background(), "concurrent capture content", nil)
			mu.Unlock()
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notes, err := svc.ListNotes(0, nil)
	require.NoError(t, err)
	assert.Len(t, notes, 8)
}
