package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestCreateNoteWithManualTags(t *testing.T) {
	svc := newService(t)

	note, err := svc.CreateNote("remember to refactor the parser", []string{"Go", "refactor"})
	require.NoError(t, err)

	assert.Equal(t, "remember to refactor the parser", note.Content)
	require.Len(t, note.Assignments, 2)
	names := map[string]bool{}
	for _, a := range note.Assignments {
		names[a.TagName] = true
		assert.Equal(t, model.SourceUser, a.Source)
		assert.Equal(t, 1.0, a.Confidence)
	}
	assert.True(t, names["go"])
	assert.True(t, names["refactor"])
}

func TestAddTagsToNoteIgnoresDuplicates(t *testing.T) {
	svc := newService(t)
	note, err := svc.CreateNote("note body", []string{"go"})
	require.NoError(t, err)

	err = svc.AddTagsToNote(note.ID, []string{"go", "testing"}, model.SourceLLM, 0.8, strPtr("v1"))
	require.NoError(t, err)

	got, err := svc.Store().GetNote(note.ID)
	require.NoError(t, err)
	assert.Len(t, got.Assignments, 2)
}

func TestAddTagsToNoteFailsOnMissingNote(t *testing.T) {
	svc := newService(t)
	err := svc.AddTagsToNote(model.NoteID(999), []string{"go"}, model.SourceLLM, 0.8, nil)
	assert.ErrorIs(t, err, model.ErrNoteNotFound)
}

func TestCreateEdgeThenDeleteRestoresCentrality(t *testing.T) {
	svc := newService(t)
	note, err := svc.CreateNote("a note", []string{"alpha", "beta"})
	require.NoError(t, err)

	var alphaID, betaID model.TagID
	for _, a := range note.Assignments {
		switch a.TagName {
		case "alpha":
			alphaID = a.TagID
		case "beta":
			betaID = a.TagID
		}
	}

	generic := model.HierarchyGeneric
	edgeID, err := svc.CreateEdge(alphaID, betaID, 0.9, &generic, model.SourceUser, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEdge(edgeID))

	degrees, err := svc.Store().DegreeCentrality([]model.TagID{alphaID, betaID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), degrees[alphaID])
	assert.Equal(t, int64(0), degrees[betaID])
}

func TestListNotesFiltersByTagAndSemantics(t *testing.T) {
	svc := newService(t)
	_, err := svc.CreateNote("note one", []string{"go", "testing"})
	require.NoError(t, err)
	_, err = svc.CreateNote("note two", []string{"go"})
	require.NoError(t, err)

	notes, err := svc.ListNotes(0, []string{"go", "testing"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "note one", notes[0].Content)
}

func TestDeleteNoteIsIdempotentAndCascades(t *testing.T) {
	svc := newService(t)
	note, err := svc.CreateNote("short lived", []string{"go"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(note.ID))
	require.NoError(t, svc.DeleteNote(note.ID))

	_, err = svc.Store().GetNote(note.ID)
	assert.ErrorIs(t, err, model.ErrNoteNotFound)

	var assignments int
	require.NoError(t, svc.Store().DB().QueryRow(
		`SELECT COUNT(*) FROM note_tags WHERE note_id = ?`, int64(note.ID)).Scan(&assignments))
	assert.Zero(t, assignments)
}

func strPtr(s string) *string { return &s }
