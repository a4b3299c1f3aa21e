package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cons/internal/alias"
	"cons/internal/model"
	"cons/internal/search"
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

// TestDualSearchIntersectionBonus: note A carries both the searched
// tag and a neighbor reachable over a generic edge, note B only the
// searched tag. A is found by both channels, gets the intersection
// bonus, and ranks first.
func TestDualSearchIntersectionBonus(t *testing.T) {
	svc := newService(t)

	noteA, err := svc.CreateNote("building an async runtime in rust", []string{"rust", "async"})
	require.NoError(t, err)
	_, err = svc.CreateNote("thoughts on rust compile times", []string{"rust"})
	require.NoError(t, err)

	var rustID, asyncID model.TagID
	for _, a := range noteA.Assignments {
		switch a.TagName {
		case "rust":
			rustID = a.TagID
		case "async":
			asyncID = a.TagID
		}
	}
	generic := model.HierarchyGeneric
	_, err = svc.CreateEdge(asyncID, rustID, 0.9, &generic, model.SourceUser, nil)
	require.NoError(t, err)

	ds := search.NewDualSearch(svc.Store())
	results, meta, err := ds.Search(context.Background(), "rust", 0)
	require.NoError(t, err)
	require.False(t, meta.GraphSkipped)
	require.Len(t, results, 2)

	require.Equal(t, noteA.ID, results[0].Note.ID)
	require.True(t, results[0].FoundByBoth)
	require.NotNil(t, results[0].FtsScore)
	require.NotNil(t, results[0].GraphScore)
	require.Greater(t, results[0].FinalScore, results[1].FinalScore)
}

// TestDualSearchAliasBridged: a note is tagged with the canonical name
// only; searching by the alias still finds it over the FTS channel.
func TestDualSearchAliasBridged(t *testing.T) {
	svc := newService(t)

	note, err := svc.CreateNote("notes on gradient descent optimization", []string{"machine-learning"})
	require.NoError(t, err)

	var mlID model.TagID
	for _, a := range note.Assignments {
		mlID = a.TagID
	}
	require.NoError(t, alias.New(svc.Store()).Create("ml", mlID, model.SourceUser, 1.0, nil))

	ds := search.NewDualSearch(svc.Store())
	results, _, err := ds.Search(context.Background(), "ml", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, note.ID, results[0].Note.ID)
	require.NotNil(t, results[0].FtsScore)
	require.Greater(t, *results[0].FtsScore, 0.0)
	require.False(t, results[0].FoundByBoth)
}

func TestDualSearchRejectsEmptyQuery(t *testing.T) {
	svc := newService(t)

	ds := search.NewDualSearch(svc.Store())
	_, _, err := ds.Search(context.Background(), "   ", 0)
	require.ErrorIs(t, err, model.ErrEmptyQuery)
}

// TestDualSearchDegradesOnSparseGraph exercises the cold-start
// rule: a single seed tag with no graph neighbors yields too few
// activated tags to trust, so the graph channel is skipped and the
// result is FTS-only.
func TestDualSearchDegradesOnSparseGraph(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateNote("isolated thought about rust", []string{"rust"})
	require.NoError(t, err)

	ds := search.NewDualSearch(svc.Store())
	results, meta, err := ds.Search(context.Background(), "rust", 0)
	require.NoError(t, err)
	require.True(t, meta.GraphSkipped)
	require.Equal(t, "sparse graph activation", meta.SkipReason)
	for _, r := range results {
		require.Nil(t, r.GraphScore)
		require.False(t, r.FoundByBoth)
	}
}

func TestDualSearchSkipsGraphWhenNoSeedTags(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateNote("a note about nothing searchable by tag", nil)
	require.NoError(t, err)

	ds := search.NewDualSearch(svc.Store())
	_, meta, err := ds.Search(context.Background(), "zzz-no-such-tag", 0)
	require.NoError(t, err)
	require.True(t, meta.GraphSkipped)
	require.Equal(t, "no seed tags", meta.SkipReason)
}
