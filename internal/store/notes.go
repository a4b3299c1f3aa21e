package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cons/internal/model"
)

// InsertNote inserts a bare note row (no tags) and returns its id.
// Callers run this inside a transaction alongside tag assignment.
func InsertNote(tx *sql.Tx, content string, now time.Time) (model.NoteID, error) {
	res, err := tx.Exec(
		`INSERT INTO notes (content, created_at, updated_at) VALUES (?, ?, ?)`,
		content, now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("note last insert id: %w", err)
	}
	return model.NoteID(id), nil
}

// GetNote loads a single note and its tag assignments.
func (s *LocalStore) GetNote(id model.NoteID) (*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getNote(s.db, id)
}

func getNote(q querier, id model.NoteID) (*model.Note, error) {
	row := q.QueryRow(`SELECT id, content, created_at, updated_at, content_enhanced, enhanced_at, enhancement_model, enhancement_confidence
		FROM notes WHERE id = ?`, int64(id))

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoteNotFound
		}
		return nil, err
	}

	assignments, err := listAssignments(q, id)
	if err != nil {
		return nil, err
	}
	n.Assignments = assignments
	return n, nil
}

// querier abstracts *sql.DB and *sql.Tx for the note read helpers.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func scanNote(row *sql.Row) (*model.Note, error) {
	var n model.Note
	var createdAt, updatedAt int64
	var enhancedAt sql.NullInt64
	var enhancedContent, enhancementModel sql.NullString
	var enhancementConfidence sql.NullFloat64

	if err := row.Scan(&n.ID, &n.Content, &createdAt, &updatedAt, &enhancedContent, &enhancedAt, &enhancementModel, &enhancementConfidence); err != nil {
		return nil, err
	}

	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	n.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if enhancedContent.Valid {
		n.ContentEnhanced = &enhancedContent.String
	}
	if enhancedAt.Valid {
		t := time.Unix(enhancedAt.Int64, 0).UTC()
		n.EnhancedAt = &t
	}
	if enhancementModel.Valid {
		n.EnhancementModel = &enhancementModel.String
	}
	if enhancementConfidence.Valid {
		n.EnhancementConfidence = &enhancementConfidence.Float64
	}
	return &n, nil
}

func listAssignments(q querier, noteID model.NoteID) ([]model.TagAssignment, error) {
	rows, err := q.Query(
		`SELECT nt.note_id, nt.tag_id, t.name, nt.source, nt.confidence, nt.model_version, nt.verified, nt.created_at
		 FROM note_tags nt JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id = ? ORDER BY t.name`, int64(noteID))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []model.TagAssignment
	for rows.Next() {
		var a model.TagAssignment
		var createdAt int64
		var modelVersion sql.NullString
		if err := rows.Scan(&a.NoteID, &a.TagID, &a.TagName, &a.Source, &a.Confidence, &modelVersion, &a.Verified, &createdAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if modelVersion.Valid {
			a.ModelVersion = &modelVersion.String
		}
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteNote removes a note by id; cascades remove its assignments via
// the note_tags foreign key. Deleting a note id that does not exist is
// a silent no-op, so repeated calls are idempotent.
func (s *LocalStore) DeleteNote(id model.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

// GetNotesByIDs batch-loads notes (with assignments) into a map keyed
// by id; callers put the results in their own order.
func (s *LocalStore) GetNotesByIDs(ids []model.NoteID) (map[model.NoteID]*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.NoteID]*model.Note, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = int64(id)
	}
	query := fmt.Sprintf(`SELECT id, content, created_at, updated_at, content_enhanced, enhanced_at, enhancement_model, enhancement_confidence
		FROM notes WHERE id IN (%s)`, join(placeholders, ","))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch get notes: %w", err)
	}
	defer rows.Close()

	var noteIDs []model.NoteID
	notes := make(map[model.NoteID]*model.Note)
	for rows.Next() {
		var n model.Note
		var createdAt, updatedAt int64
		var enhancedAt sql.NullInt64
		var enhancedContent, enhancementModel sql.NullString
		var enhancementConfidence sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Content, &createdAt, &updatedAt, &enhancedContent, &enhancedAt, &enhancementModel, &enhancementConfidence); err != nil {
			return nil, fmt.Errorf("scan batch note: %w", err)
		}
		n.CreatedAt = time.Unix(createdAt, 0).UTC()
		n.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		if enhancedContent.Valid {
			n.ContentEnhanced = &enhancedContent.String
		}
		if enhancedAt.Valid {
			t := time.Unix(enhancedAt.Int64, 0).UTC()
			n.EnhancedAt = &t
		}
		if enhancementModel.Valid {
			n.EnhancementModel = &enhancementModel.String
		}
		if enhancementConfidence.Valid {
			n.EnhancementConfidence = &enhancementConfidence.Float64
		}
		notes[n.ID] = &n
		noteIDs = append(noteIDs, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range noteIDs {
		assignments, err := listAssignments(s.db, id)
		if err != nil {
			return nil, err
		}
		notes[id].Assignments = assignments
	}
	return notes, nil
}

func join(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += sep + p
	}
	return out
}
