package alias_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cons/internal/alias"
	"cons/internal/model"
	"cons/internal/store"
)

func newResolver(t *testing.T) (*alias.Resolver, *store.LocalStore) {
	t.Helper()
	s, err := store.NewLocalStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return alias.New(s), s
}

func createTag(t *testing.T, s *store.LocalStore, name string) model.TagID {
	t.Helper()
	tx, err := s.DB().Begin()
	require.NoError(t, err)
	id, err := store.GetOrCreateTag(tx, name)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return id
}

func TestResolveMissingReturnsFalse(t *testing.T) {
	r, _ := newResolver(t)
	_, ok, err := r.Resolve("nn")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateAndResolve(t *testing.T) {
	r, s := newResolver(t)
	canonical := createTag(t, s, "neural-network")

	require.NoError(t, r.Create("nn", canonical, model.SourceUser, 1.0, nil))

	resolved, ok, err := r.Resolve("NN")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, canonical, resolved)
}

func TestCreateFailsOnMissingCanonical(t *testing.T) {
	r, _ := newResolver(t)
	err := r.Create("nn", model.TagID(999), model.SourceUser, 1.0, nil)
	assert.ErrorIs(t, err, model.ErrTagNotFound)
}

func TestCreateFailsOnAliasChain(t *testing.T) {
	r, s := newResolver(t)
	a := createTag(t, s, "a")
	b := createTag(t, s, "b")

	require.NoError(t, r.Create("a", b, model.SourceUser, 1.0, nil))

	err := r.Create("x", a, model.SourceUser, 1.0, nil)
	assert.ErrorIs(t, err, model.ErrAliasChain)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r, s := newResolver(t)
	canonical := createTag(t, s, "python")
	require.NoError(t, r.Create("py", canonical, model.SourceUser, 1.0, nil))

	require.NoError(t, r.Remove("py"))
	require.NoError(t, r.Remove("py"))

	_, ok, err := r.Resolve("py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpansionAliasesFiltersLowConfidenceLLM(t *testing.T) {
	r, s := newResolver(t)
	canonical := createTag(t, s, "rust")

	tx, err := s.DB().Begin()
	require.NoError(t, err)
	require.NoError(t, store.CreateAlias(tx, "rustlang", canonical, model.SourceLLM, 0.5, nil, time.Now()))
	require.NoError(t, store.CreateAlias(tx, "rs", canonical, model.SourceLLM, 0.9, nil, time.Now()))
	require.NoError(t, store.CreateAlias(tx, "at-boundary", canonical, model.SourceLLM, 0.8, nil, time.Now()))
	require.NoError(t, store.CreateAlias(tx, "below-boundary", canonical, model.SourceLLM, 0.7999, nil, time.Now()))
	require.NoError(t, tx.Commit())
	require.NoError(t, r.Create("rustacean", canonical, model.SourceUser, 1.0, nil))

	aliases, err := r.ExpansionAliases(canonical)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, a := range aliases {
		names[a.Alias] = true
	}
	assert.True(t, names["rs"])
	assert.True(t, names["rustacean"])
	assert.True(t, names["at-boundary"], "llm alias at exactly 0.8 is eligible")
	assert.False(t, names["below-boundary"], "llm alias just under 0.8 is not")
	assert.False(t, names["rustlang"])
}
