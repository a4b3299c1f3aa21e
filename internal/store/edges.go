package store

import (
	"database/sql"
	"fmt"
	"time"

	"cons/internal/model"
)

// CreateEdge validates both tags exist and hierarchy_type (if any),
// returns idempotent success if an edge already exists for the same
// (source, target, validity window), otherwise inserts the edge and
// increments degree_centrality on both endpoints in the same
// transaction, keeping centrality equal to incident edge count.
func CreateEdge(tx *sql.Tx, sourceTagID, targetTagID model.TagID, confidence float64, hierarchyType *model.HierarchyType, validFrom, validUntil *time.Time, source model.TagSource, modelVersion *string, now time.Time) (model.EdgeID, error) {
	if ok, err := TagExists(tx, sourceTagID); err != nil {
		return 0, err
	} else if !ok {
		return 0, model.ErrTagNotFound
	}
	if ok, err := TagExists(tx, targetTagID); err != nil {
		return 0, err
	} else if !ok {
		return 0, model.ErrTagNotFound
	}

	var htype interface{}
	if hierarchyType != nil {
		htype = string(*hierarchyType)
	}

	var existing int64
	err := tx.QueryRow(
		`SELECT id FROM edges WHERE source_tag_id = ? AND target_tag_id = ?
		 AND COALESCE(valid_from, 0) = COALESCE(?, 0) AND COALESCE(valid_until, 0) = COALESCE(?, 0)`,
		int64(sourceTagID), int64(targetTagID), unixPtr(validFrom), unixPtr(validUntil),
	).Scan(&existing)
	if err == nil {
		return model.EdgeID(existing), nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check existing edge: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO edges (source_tag_id, target_tag_id, confidence, hierarchy_type, valid_from, valid_until, source, model_version, verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		int64(sourceTagID), int64(targetTagID), confidence, htype, unixPtrNullable(validFrom), unixPtrNullable(validUntil), string(source), modelVersion, now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert edge: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("edge last insert id: %w", err)
	}

	if err := bumpCentrality(tx, sourceTagID, 1); err != nil {
		return 0, err
	}
	if err := bumpCentrality(tx, targetTagID, 1); err != nil {
		return 0, err
	}

	return model.EdgeID(id), nil
}

// DeleteEdge removes an edge and decrements both endpoints' centrality,
// floored at zero.
func DeleteEdge(tx *sql.Tx, edgeID model.EdgeID) error {
	var sourceID, targetID int64
	err := tx.QueryRow(`SELECT source_tag_id, target_tag_id FROM edges WHERE id = ?`, int64(edgeID)).Scan(&sourceID, &targetID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup edge endpoints: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM edges WHERE id = ?`, int64(edgeID)); err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}

	if err := bumpCentrality(tx, model.TagID(sourceID), -1); err != nil {
		return err
	}
	if err := bumpCentrality(tx, model.TagID(targetID), -1); err != nil {
		return err
	}
	return nil
}

func bumpCentrality(tx *sql.Tx, tagID model.TagID, delta int) error {
	_, err := tx.Exec(
		`UPDATE tags SET degree_centrality = MAX(0, degree_centrality + ?) WHERE id = ?`,
		delta, int64(tagID),
	)
	if err != nil {
		return fmt.Errorf("update centrality for tag %d: %w", tagID, err)
	}
	return nil
}

func unixPtr(t *time.Time) interface{} {
	if t == nil {
		return int64(0)
	}
	return t.Unix()
}

func unixPtrNullable(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// MaxDegreeCentrality returns the maximum degree_centrality across all
// tags, used by the centrality boost in spreading activation (0 when
// the tags table is empty).
func (s *LocalStore) MaxDegreeCentrality() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(degree_centrality) FROM tags`).Scan(&max); err != nil {
		return 0, fmt.Errorf("max degree centrality: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// DegreeCentrality returns degree_centrality for each requested tag,
// omitting ids that don't exist.
func (s *LocalStore) DegreeCentrality(ids []model.TagID) (map[model.TagID]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.TagID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = int64(id)
	}
	rows, err := s.db.Query(fmt.Sprintf(`SELECT id, degree_centrality FROM tags WHERE id IN (%s)`, join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("degree centrality: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id model.TagID
		var degree int64
		if err := rows.Scan(&id, &degree); err != nil {
			return nil, fmt.Errorf("scan degree centrality: %w", err)
		}
		out[id] = degree
	}
	return out, rows.Err()
}
