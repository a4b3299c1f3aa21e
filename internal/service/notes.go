// Package service implements NoteService, the transactional façade
// that is the only mutator of the note graph.
package service

import (
	"fmt"
	"strings"
	"time"

	"cons/internal/model"
	"cons/internal/search"
	"cons/internal/store"
	"cons/internal/tagnorm"
)

// NoteService owns all writes to the store. Every public method that
// mutates state runs inside a single transaction.
type NoteService struct {
	store *store.LocalStore
}

// New builds a NoteService over s, rebuilding the FTS index if it was
// found empty on open (lazy FTS rebuild).
func New(s *store.LocalStore) (*NoteService, error) {
	if err := search.RebuildIfEmpty(s); err != nil {
		return nil, fmt.Errorf("rebuild fts index: %w", err)
	}
	return &NoteService{store: s}, nil
}

// Store returns the underlying store, for components (search, CLI)
// that need direct read access.
func (n *NoteService) Store() *store.LocalStore { return n.store }

// CreateNote inserts a note and its manual tags within one
// transaction; failure at any step rolls back the whole thing.
func (n *NoteService) CreateNote(content string, manualTags []string) (*model.Note, error) {
	tx, err := n.store.DB().Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create note: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	noteID, err := store.InsertNote(tx, content, now)
	if err != nil {
		return nil, err
	}

	for _, name := range tagnorm.NormalizeMany(manualTags) {
		tagID, err := store.GetOrCreateTag(tx, name)
		if err != nil {
			return nil, err
		}
		if err := store.InsertAssignment(tx, noteID, tagID, model.SourceUser, 1.0, nil, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create note: %w", err)
	}

	return n.store.GetNote(noteID)
}

// AddTagsToNote attaches tags to an existing note under the given
// source, ignoring duplicates silently.
func (n *NoteService) AddTagsToNote(noteID model.NoteID, names []string, source model.TagSource, confidence float64, modelVersion *string) error {
	tx, err := n.store.DB().Begin()
	if err != nil {
		return fmt.Errorf("begin add tags: %w", err)
	}
	defer tx.Rollback()

	exists, err := store.NoteExists(tx, noteID)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrNoteNotFound
	}

	now := time.Now()
	for _, name := range tagnorm.NormalizeMany(names) {
		tagID, err := store.GetOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		if err := store.InsertAssignment(tx, noteID, tagID, source, confidence, modelVersion, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateEnhancement records a successful NoteEnhancer result. Content
// is set exactly once; a later call for a note that already has
// enhanced content changes nothing (capture only ever calls this once
// per note).
func (n *NoteService) UpdateEnhancement(noteID model.NoteID, enhanced string, modelVersion string, confidence float64) error {
	now := time.Now()
	_, err := n.store.DB().Exec(
		`UPDATE notes SET content_enhanced = ?, enhanced_at = ?, enhancement_model = ?, enhancement_confidence = ?, updated_at = ?
		 WHERE id = ? AND content_enhanced IS NULL`,
		enhanced, now.Unix(), modelVersion, confidence, now.Unix(), int64(noteID),
	)
	if err != nil {
		return fmt.Errorf("update enhancement for note %d: %w", noteID, err)
	}
	return nil
}

// CreateEdge validates and inserts a tag-to-tag edge, maintaining
// degree_centrality on both endpoints within one transaction.
func (n *NoteService) CreateEdge(sourceTagID, targetTagID model.TagID, confidence float64, hierarchyType *model.HierarchyType, source model.TagSource, modelVersion *string) (model.EdgeID, error) {
	tx, err := n.store.DB().Begin()
	if err != nil {
		return 0, fmt.Errorf("begin create edge: %w", err)
	}
	defer tx.Rollback()

	id, err := store.CreateEdge(tx, sourceTagID, targetTagID, confidence, hierarchyType, nil, nil, source, modelVersion, time.Now())
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create edge: %w", err)
	}
	return id, nil
}

// DeleteEdge removes an edge and decrements both endpoints'
// centrality, floored at zero.
func (n *NoteService) DeleteEdge(edgeID model.EdgeID) error {
	tx, err := n.store.DB().Begin()
	if err != nil {
		return fmt.Errorf("begin delete edge: %w", err)
	}
	defer tx.Rollback()

	if err := store.DeleteEdge(tx, edgeID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note and its tag assignments (cascade). Calling
// it twice for the same id is idempotent: the second call finds no
// row and succeeds as a no-op.
func (n *NoteService) DeleteNote(id model.NoteID) error {
	return n.store.DeleteNote(id)
}

// ListNotes returns the most recently created notes first, optionally
// filtered to notes carrying every tag in tags (AND semantics, after
// alias resolution per term).
func (n *NoteService) ListNotes(limit int, tags []string) ([]*model.Note, error) {
	db := n.store.DB()

	query := `SELECT id FROM notes`
	var args []interface{}

	if len(tags) > 0 {
		resolvedIDs := make([]int64, 0, len(tags))
		for _, t := range tags {
			norm := tagnorm.Normalize(t)
			var id int64
			err := db.QueryRow(`SELECT canonical_tag_id FROM tag_aliases WHERE alias = ?`, norm).Scan(&id)
			if err != nil {
				if err := db.QueryRow(`SELECT id FROM tags WHERE name = ? COLLATE NOCASE`, norm).Scan(&id); err != nil {
					return nil, nil
				}
			}
			resolvedIDs = append(resolvedIDs, id)
		}

		placeholders := make([]string, len(resolvedIDs))
		for i, id := range resolvedIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += fmt.Sprintf(
			` WHERE id IN (SELECT note_id FROM note_tags WHERE tag_id IN (%s) GROUP BY note_id HAVING COUNT(DISTINCT tag_id) = ?)`,
			strings.Join(placeholders, ","))
		args = append(args, len(resolvedIDs))
	}

	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	var ids []model.NoteID
	for rows.Next() {
		var id model.NoteID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	notes, err := n.store.GetNotesByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Note, 0, len(ids))
	for _, id := range ids {
		if note, ok := notes[id]; ok {
			out = append(out, note)
		}
	}
	return out, nil
}
