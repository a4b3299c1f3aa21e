package store

import (
	"fmt"
	"strings"

	"cons/internal/model"
)

// ActivateTags runs the spreading-activation recursive CTE from seeds
// and returns raw accumulated activation per reached tag (seeds
// included). Edges are traversed bidirectionally; a partitive edge
// weighs 0.5, a generic or NULL edge weighs 1.0. Activation strictly
// decreases with decay < 1, so the threshold prune plus hop limit
// guarantee termination without cycle bookkeeping.
func (s *LocalStore) ActivateTags(seeds map[model.TagID]float64, decay, threshold float64, maxHops int) (map[model.TagID]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.TagID]float64, len(seeds))
	if len(seeds) == 0 {
		return out, nil
	}

	seedValues := make([]string, 0, len(seeds))
	args := make([]interface{}, 0, len(seeds)*2+3)
	for id, activation := range seeds {
		seedValues = append(seedValues, "(?, ?)")
		args = append(args, int64(id), activation)
	}

	query := fmt.Sprintf(`
WITH RECURSIVE seeds(tag_id, initial_activation) AS (
	VALUES %s
),
activated(tag_id, activation, hop) AS (
	SELECT tag_id, initial_activation, 0 FROM seeds
	UNION ALL
	SELECT
		CASE WHEN e.source_tag_id = a.tag_id THEN e.target_tag_id ELSE e.source_tag_id END,
		a.activation * e.confidence * ? * (CASE WHEN e.hierarchy_type = 'partitive' THEN 0.5 ELSE 1.0 END),
		a.hop + 1
	FROM activated a
	JOIN edges e ON e.source_tag_id = a.tag_id OR e.target_tag_id = a.tag_id
	WHERE a.hop < ?
		AND a.activation * e.confidence * ? * (CASE WHEN e.hierarchy_type = 'partitive' THEN 0.5 ELSE 1.0 END) >= ?
)
SELECT tag_id, SUM(activation) FROM activated GROUP BY tag_id
`, strings.Join(seedValues, ", "))

	args = append(args, decay, maxHops, decay, threshold)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("spreading activation query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id model.TagID
		var activation float64
		if err := rows.Scan(&id, &activation); err != nil {
			return nil, fmt.Errorf("scan activation row: %w", err)
		}
		out[id] += activation
	}
	return out, rows.Err()
}

// NoteTagActivations loads, for each note carrying at least one
// activated tag, the set of (tag_id, assignment.confidence) pairs
// needed for SpreadingActivation's note-scoring step.
func (s *LocalStore) NoteTagActivations(tagIDs []model.TagID) (map[model.NoteID][]TagConfidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.NoteID][]TagConfidence)
	if len(tagIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(tagIDs))
	args := make([]interface{}, len(tagIDs))
	for i, id := range tagIDs {
		placeholders[i] = "?"
		args[i] = int64(id)
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT note_id, tag_id, confidence FROM note_tags WHERE tag_id IN (%s)`, join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("note tag activations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID model.NoteID
		var tagID model.TagID
		var confidence float64
		if err := rows.Scan(&noteID, &tagID, &confidence); err != nil {
			return nil, fmt.Errorf("scan note tag activation: %w", err)
		}
		out[noteID] = append(out[noteID], TagConfidence{TagID: tagID, Confidence: confidence})
	}
	return out, rows.Err()
}

// TagConfidence pairs a tag with an assignment's confidence, used when
// computing a note's graph-channel score from activated tags.
type TagConfidence struct {
	TagID      model.TagID
	Confidence float64
}
