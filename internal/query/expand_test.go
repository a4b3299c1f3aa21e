package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cons/internal/alias"
	"cons/internal/model"
	"cons/internal/query"
	"cons/internal/store"
)

func setupGraph(t *testing.T) *store.LocalStore {
	t.Helper()
	s, err := store.NewLocalStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tx, err := s.DB().Begin()
	require.NoError(t, err)
	ml, err := store.GetOrCreateTag(tx, "machine-learning")
	require.NoError(t, err)
	programming, err := store.GetOrCreateTag(tx, "programming")
	require.NoError(t, err)
	generic := model.HierarchyGeneric
	_, err = store.CreateEdge(tx, ml, programming, 0.9, &generic, nil, nil, model.SourceUser, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	r := alias.New(s)
	require.NoError(t, r.Create("ml", ml, model.SourceUser, 1.0, nil))

	return s
}

func TestExpandAliasAndBroader(t *testing.T) {
	s := setupGraph(t)
	e := query.New(s)

	expanded, err := e.Expand("ML rust")
	require.NoError(t, err)
	assert.Equal(t, `(ml OR "machine-learning" OR programming) (rust)`, expanded)
}

func TestExpandSkipsBroaderWhenQueryLong(t *testing.T) {
	s := setupGraph(t)
	e := query.New(s)

	expanded, err := e.Expand("ML is very useful indeed")
	require.NoError(t, err)
	assert.Contains(t, expanded, `(ml OR "machine-learning")`)
	assert.NotContains(t, expanded, "programming")
}

func TestExpandUnknownTermPassesThrough(t *testing.T) {
	s := setupGraph(t)
	e := query.New(s)

	expanded, err := e.Expand("kubernetes")
	require.NoError(t, err)
	assert.Equal(t, "(kubernetes)", expanded)
}
