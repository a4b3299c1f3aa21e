// Package alias resolves and manages TagAlias rows: the alternate
// labels ("nn", "ML") that map onto a canonical tag.
package alias

import (
	"database/sql"
	"fmt"
	"time"

	"cons/internal/model"
	"cons/internal/store"
	"cons/internal/tagnorm"
)

// Resolver exposes the AliasResolver operations against a store.
type Resolver struct {
	db *sql.DB
}

// New builds a Resolver over the given store's connection.
func New(s *store.LocalStore) *Resolver {
	return &Resolver{db: s.DB()}
}

// Resolve normalizes term and looks it up among aliases
// case-insensitively, returning the canonical tag id if found.
func (r *Resolver) Resolve(term string) (model.TagID, bool, error) {
	norm := tagnorm.Normalize(term)
	var id int64
	err := r.db.QueryRow(`SELECT canonical_tag_id FROM tag_aliases WHERE alias = ?`, norm).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve alias %q: %w", norm, err)
	}
	return model.TagID(id), true, nil
}

// Create inserts an alias pointing at canonicalID. Fails if
// canonicalID does not exist, or if canonicalID's own tag name is
// itself recorded as some other alias's text, or if the alias text is
// the name of a tag that other aliases already point at (no alias
// chains). A later Create for the same alias text replaces provenance.
func (r *Resolver) Create(aliasText string, canonicalID model.TagID, source model.TagSource, confidence float64, modelVersion *string) error {
	norm := tagnorm.Normalize(aliasText)

	var canonicalName string
	err := r.db.QueryRow(`SELECT name FROM tags WHERE id = ?`, int64(canonicalID)).Scan(&canonicalName)
	if err == sql.ErrNoRows {
		return model.ErrTagNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup canonical tag %d: %w", canonicalID, err)
	}

	var chainCount int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tag_aliases WHERE alias = ?`, canonicalName).Scan(&chainCount); err != nil {
		return fmt.Errorf("check alias chain: %w", err)
	}
	if chainCount > 0 {
		return model.ErrAliasChain
	}

	var targetCount int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tag_aliases a JOIN tags t ON t.id = a.canonical_tag_id WHERE t.name = ?`, norm).Scan(&targetCount); err != nil {
		return fmt.Errorf("check alias chain: %w", err)
	}
	if targetCount > 0 {
		return model.ErrAliasChain
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin alias create: %w", err)
	}
	defer tx.Rollback()

	if err := store.CreateAlias(tx, norm, canonicalID, source, confidence, modelVersion, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns every alias joined to its canonical name, sorted by
// canonical name then alias.
func (r *Resolver) List() ([]model.TagAlias, error) {
	rows, err := r.db.Query(`SELECT a.alias, a.canonical_tag_id, t.name, a.source, a.confidence, a.model_version, a.created_at
		FROM tag_aliases a JOIN tags t ON t.id = a.canonical_tag_id
		ORDER BY t.name, a.alias`)
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

// Remove deletes an alias by name. Idempotent.
func (r *Resolver) Remove(aliasText string) error {
	norm := tagnorm.Normalize(aliasText)
	if _, err := r.db.Exec(`DELETE FROM tag_aliases WHERE alias = ?`, norm); err != nil {
		return fmt.Errorf("remove alias %q: %w", norm, err)
	}
	return nil
}

// ExpansionAliases returns the aliases of canonicalID eligible for
// retrieval-time query expansion: source=user unconditionally, or
// source=llm with confidence >= 0.8.
func (r *Resolver) ExpansionAliases(canonicalID model.TagID) ([]model.TagAlias, error) {
	rows, err := r.db.Query(
		`SELECT a.alias, a.canonical_tag_id, t.name, a.source, a.confidence, a.model_version, a.created_at
		 FROM tag_aliases a JOIN tags t ON t.id = a.canonical_tag_id
		 WHERE a.canonical_tag_id = ? AND (a.source = 'user' OR (a.source = 'llm' AND a.confidence >= 0.8))`,
		int64(canonicalID))
	if err != nil {
		return nil, fmt.Errorf("expansion aliases: %w", err)
	}
	defer rows.Close()

	var out []model.TagAlias
	for rows.Next() {
		var a model.TagAlias
		var createdAt int64
		var modelVersion sql.NullString
		if err := rows.Scan(&a.Alias, &a.CanonicalTagID, &a.CanonicalName, &a.Source, &a.Confidence, &modelVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expansion alias: %w", err)
		}
		if modelVersion.Valid {
			a.ModelVersion = &modelVersion.String
		}
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
