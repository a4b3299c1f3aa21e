// Package search implements the dual-channel retrieval engine: FTS5
// full-text scoring, spreading activation over the tag graph, and the
// fusion that merges them into a single ranked result set.
package search

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"cons/internal/model"
	"cons/internal/query"
	"cons/internal/store"
)

// ScoredNote pairs a note with a channel-relative relevance score.
type ScoredNote struct {
	Note      *model.Note
	Relevance float64
}

// FtsSearch runs the alias-expanded full-text channel.
type FtsSearch struct {
	s        *store.LocalStore
	expander *query.Expander
}

// NewFtsSearch builds an FtsSearch over s.
func NewFtsSearch(s *store.LocalStore) *FtsSearch {
	return &FtsSearch{s: s, expander: query.New(s)}
}

// Search returns notes matching query ranked by normalized BM25
// (1/(1+|raw|), monotone decreasing with raw BM25, in (0, 1]). limit
// <= 0 means unbounded. An empty query is a user error.
func (f *FtsSearch) Search(q string, limit int) ([]ScoredNote, error) {
	if strings.TrimSpace(q) == "" {
		return nil, model.ErrEmptyQuery
	}

	expanded, err := f.expander.Expand(q)
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}
	if expanded == "" {
		return nil, nil
	}

	sqlQuery := `SELECT note_id, bm25(notes_fts) FROM notes_fts WHERE notes_fts MATCH ? ORDER BY bm25(notes_fts) ASC`
	args := []interface{}{expanded}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := f.s.DB().Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}

	type hit struct {
		id  model.NoteID
		raw float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan fts hit: %w", err)
		}
		hits = append(hits, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]model.NoteID, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	notes, err := f.s.GetNotesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load matched notes: %w", err)
	}

	out := make([]ScoredNote, 0, len(hits))
	for _, h := range hits {
		n, ok := notes[h.id]
		if !ok {
			continue
		}
		out = append(out, ScoredNote{Note: n, Relevance: 1 / (1 + math.Abs(h.raw))})
	}
	return out, nil
}

// RebuildIfEmpty repopulates notes_fts from notes joined with their
// tag assignments when the FTS table has zero rows but notes exist.
// Called once on store open; triggers keep it current thereafter.
func RebuildIfEmpty(s *store.LocalStore) error {
	db := s.DB()

	var ftsCount, noteCount int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes_fts`).Scan(&ftsCount); err != nil {
		return fmt.Errorf("count fts rows: %w", err)
	}
	if ftsCount > 0 {
		return nil
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&noteCount); err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	if noteCount == 0 {
		return nil
	}

	rows, err := db.Query(`SELECT id, content, content_enhanced FROM notes`)
	if err != nil {
		return fmt.Errorf("scan notes for rebuild: %w", err)
	}
	defer rows.Close()

	type row struct {
		id      int64
		content string
		enh     sql.NullString
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.content, &r.enh); err != nil {
			return fmt.Errorf("scan note row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range all {
		var tags string
		if err := db.QueryRow(
			`SELECT COALESCE(group_concat(t.name, ' '), '') FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = ?`,
			r.id).Scan(&tags); err != nil {
			return fmt.Errorf("collect tags for note %d: %w", r.id, err)
		}
		if _, err := db.Exec(
			`INSERT INTO notes_fts (note_id, content, content_enhanced, tags) VALUES (?, ?, ?, ?)`,
			r.id, r.content, r.enh, tags); err != nil {
			return fmt.Errorf("rebuild fts row for note %d: %w", r.id, err)
		}
	}
	return nil
}
