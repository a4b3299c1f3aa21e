package hierarchy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"cons/internal/hierarchy"
	"cons/internal/llmclient"
	"cons/internal/model"
	"cons/internal/service"
	"cons/internal/store"
)

func newService(t *testing.T) *service.NoteService {
	t.Helper()
	s, err := store.NewLocalStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc, err := service.New(s)
	require.NoError(t, err)
	return svc
}

func TestSuggestFiltersLowConfidenceAndUnknownTags(t *testing.T) {
	client := &llmclient.FakeClient{Text: `[
		{"source_tag": "rust", "target_tag": "programming-language", "hierarchy_type": "generic", "confidence": 0.95},
		{"source_tag": "rust", "target_tag": "unknown-tag", "hierarchy_type": "generic", "confidence": 0.95},
		{"source_tag": "rust", "target_tag": "memory-safety", "hierarchy_type": "generic", "confidence": 0.4},
		{"source_tag": "memory-safety", "target_tag": "programming-language", "hierarchy_type": "partitive", "confidence": 0.7},
		{"source_tag": "programming-language", "target_tag": "memory-safety", "hierarchy_type": "generic", "confidence": 0.699},
		{"source_tag": "rust", "target_tag": "rust", "hierarchy_type": "generic", "confidence": 0.9}
	]`}
	s := hierarchy.New(client)

	got := s.Suggest(context.Background(), "test-model", []string{"rust", "programming-language", "memory-safety"})

	want := []hierarchy.Suggestion{
		{SourceTag: "rust", TargetTag: "programming-language", HierarchyType: model.HierarchyGeneric, Confidence: 0.95},
		{SourceTag: "memory-safety", TargetTag: "programming-language", HierarchyType: model.HierarchyPartitive, Confidence: 0.7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestAbsorbsClientError(t *testing.T) {
	client := &llmclient.FakeClient{Err: errors.New("timeout")}
	s := hierarchy.New(client)

	got := s.Suggest(context.Background(), "test-model", []string{"a", "b"})
	require.Nil(t, got)
}

func TestSuggestRequiresAtLeastTwoTags(t *testing.T) {
	s := hierarchy.New(&llmclient.FakeClient{Text: `[]`})
	got := s.Suggest(context.Background(), "test-model", []string{"solo"})
	require.Nil(t, got)
}

// TestRunOnceIsIdempotent is scenario 6 from the testable-properties
// list: running suggest twice over the same tag set creates exactly
// one edge, and both endpoints' degree_centrality settle at 1.
func TestRunOnceIsIdempotent(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateNote("learning rust", []string{"rust", "programming-language"})
	require.NoError(t, err)

	client := &llmclient.FakeClient{Text: `[{"source_tag": "rust", "target_tag": "programming-language", "hierarchy_type": "generic", "confidence": 0.9}]`}
	suggester := hierarchy.New(client)

	_, err = hierarchy.RunOnce(context.Background(), svc, suggester, "test-model")
	require.NoError(t, err)
	_, err = hierarchy.RunOnce(context.Background(), svc, suggester, "test-model")
	require.NoError(t, err)

	tags, err := svc.Store().TagsWithAssignments()
	require.NoError(t, err)
	for _, tg := range tags {
		require.Equal(t, int64(1), tg.DegreeCentrality, "tag %s", tg.Name)
	}

	var edgeCount int
	require.NoError(t, svc.Store().DB().QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&edgeCount))
	require.Equal(t, 1, edgeCount)
}
