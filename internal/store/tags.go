package store

import (
	"database/sql"
	"fmt"
	"time"

	"cons/internal/model"
	"cons/internal/tagnorm"
)

// GetOrCreateTag normalizes name, resolves it through an existing
// alias silently, else looks it up case-insensitively, else inserts a
// new canonical tag.
func GetOrCreateTag(tx *sql.Tx, name string) (model.TagID, error) {
	norm := tagnorm.Normalize(name)

	var canonicalID int64
	err := tx.QueryRow(`SELECT canonical_tag_id FROM tag_aliases WHERE alias = ?`, norm).Scan(&canonicalID)
	if err == nil {
		return model.TagID(canonicalID), nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("resolve alias %q: %w", norm, err)
	}

	var id int64
	err = tx.QueryRow(`SELECT id FROM tags WHERE name = ? COLLATE NOCASE`, norm).Scan(&id)
	if err == nil {
		return model.TagID(id), nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup tag %q: %w", norm, err)
	}

	res, err := tx.Exec(`INSERT INTO tags (name, degree_centrality) VALUES (?, 0)`, norm)
	if err != nil {
		return 0, fmt.Errorf("insert tag %q: %w", norm, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tag last insert id: %w", err)
	}
	return model.TagID(newID), nil
}

// TagExists reports whether a tag id is present.
func TagExists(tx *sql.Tx, id model.TagID) (bool, error) {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM tags WHERE id = ?`, int64(id)).Scan(&count); err != nil {
		return false, fmt.Errorf("check tag exists: %w", err)
	}
	return count > 0, nil
}

// NoteExists reports whether a note id is present.
func NoteExists(tx *sql.Tx, id model.NoteID) (bool, error) {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM notes WHERE id = ?`, int64(id)).Scan(&count); err != nil {
		return false, fmt.Errorf("check note exists: %w", err)
	}
	return count > 0, nil
}

// InsertAssignment inserts (note, tag) with the given source/confidence,
// silently ignoring a duplicate (note_id, tag_id) pair.
func InsertAssignment(tx *sql.Tx, noteID model.NoteID, tagID model.TagID, source model.TagSource, confidence float64, modelVersion *string, now time.Time) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO note_tags (note_id, tag_id, source, confidence, model_version, verified, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		int64(noteID), int64(tagID), string(source), confidence, modelVersion, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// CreateAlias inserts an alias pointing at canonicalTagID. Replaces an
// existing alias of the same name (an alias can only resolve to one
// canonical tag at a time).
func CreateAlias(tx *sql.Tx, alias string, canonicalTagID model.TagID, source model.TagSource, confidence float64, modelVersion *string, now time.Time) error {
	norm := tagnorm.Normalize(alias)
	_, err := tx.Exec(
		`INSERT OR REPLACE INTO tag_aliases (alias, canonical_tag_id, source, confidence, model_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		norm, int64(canonicalTagID), string(source), confidence, modelVersion, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

// ListAliases returns every alias pointing at canonical tags, most
// recently created first.
func (s *LocalStore) ListAliases() ([]model.TagAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT a.alias, a.canonical_tag_id, t.name, a.source, a.confidence, a.model_version, a.created_at
		FROM tag_aliases a JOIN tags t ON t.id = a.canonical_tag_id ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var out []model.TagAlias
	for rows.Next() {
		var a model.TagAlias
		var createdAt int64
		var modelVersion sql.NullString
		if err := rows.Scan(&a.Alias, &a.CanonicalTagID, &a.CanonicalName, &a.Source, &a.Confidence, &modelVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if modelVersion.Valid {
			a.ModelVersion = &modelVersion.String
		}
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// RemoveAlias deletes an alias by its literal (normalized) name.
func (s *LocalStore) RemoveAlias(alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := tagnorm.Normalize(alias)
	_, err := s.db.Exec(`DELETE FROM tag_aliases WHERE alias = ?`, norm)
	if err != nil {
		return fmt.Errorf("remove alias: %w", err)
	}
	return nil
}

// ListCanonicalTagNames returns every canonical tag's id and name, used
// by the alias-creation heuristic to find a fuzzy match candidate.
func (s *LocalStore) ListCanonicalTagNames() ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, degree_centrality FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.DegreeCentrality); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TagsWithAssignments returns every canonical tag carrying at least
// one note assignment, used by "hierarchy suggest" so the
// classifier only sees tags actually in use.
func (s *LocalStore) TagsWithAssignments() ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT t.id, t.name, t.degree_centrality FROM tags t
		 WHERE EXISTS (SELECT 1 FROM note_tags nt WHERE nt.tag_id = t.id)
		 ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags with assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.DegreeCentrality); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TagByName looks up a canonical tag case-insensitively, not
// resolving aliases.
func (s *LocalStore) TagByName(name string) (*model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm := tagnorm.Normalize(name)
	var t model.Tag
	err := s.db.QueryRow(`SELECT id, name, degree_centrality FROM tags WHERE name = ? COLLATE NOCASE`, norm).
		Scan(&t.ID, &t.Name, &t.DegreeCentrality)
	if err == sql.ErrNoRows {
		return nil, model.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tag by name: %w", err)
	}
	return &t, nil
}
