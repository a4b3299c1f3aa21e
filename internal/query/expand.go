// Package query builds an FTS5 MATCH expression from a user's raw
// search string, expanding each term through tag aliases and (for
// short queries) one or more hops of broader-concept edges.
package query

import (
	"database/sql"
	"fmt"
	"strings"

	"cons/internal/alias"
	"cons/internal/config"
	"cons/internal/model"
	"cons/internal/store"
	"cons/internal/tagnorm"
)

// Expander builds FTS5 MATCH expressions.
type Expander struct {
	db       *sql.DB
	resolver *alias.Resolver
}

// New builds an Expander over s.
func New(s *store.LocalStore) *Expander {
	return &Expander{db: s.DB(), resolver: alias.New(s)}
}

// Expand turns query into an FTS5 MATCH expression: alias
// expansion always, broader-concept expansion only when the query has
// fewer than three whitespace terms, each capped at cfg.MaxTerms with
// aliases preferred over broader concepts when the cap is hit.
func (e *Expander) Expand(query string) (string, error) {
	terms := strings.Fields(query)
	cfg := config.QueryExpansion()

	groups := make([]string, 0, len(terms))
	broaderEligible := len(terms) < 3

	for _, term := range terms {
		norm := tagnorm.Normalize(term)
		if norm == "" {
			continue
		}

		expansion := []string{norm}
		seen := map[string]bool{norm: true}
		add := func(s string) {
			if s == "" || seen[s] {
				return
			}
			seen[s] = true
			expansion = append(expansion, s)
		}

		canonicalID, canonicalName, hasCanonical, err := e.resolveCanonical(norm)
		if err != nil {
			return "", err
		}
		if hasCanonical {
			add(canonicalName)
		}

		if hasCanonical && len(expansion) < cfg.MaxTerms {
			aliases, err := e.resolver.ExpansionAliases(canonicalID)
			if err != nil {
				return "", err
			}
			for _, a := range aliases {
				if len(expansion) >= cfg.MaxTerms {
					break
				}
				add(a.Alias)
			}
		}

		if hasCanonical && broaderEligible && len(expansion) < cfg.MaxTerms {
			broader, err := e.broaderExpansion(canonicalID, cfg.Depth, cfg.BroaderMinConfidence)
			if err != nil {
				return "", err
			}
			for _, n := range broader {
				if len(expansion) >= cfg.MaxTerms {
					break
				}
				add(n)
			}
		}

		groups = append(groups, ftsGroup(expansion))
	}

	return strings.Join(groups, " "), nil
}

// resolveCanonical resolves norm to a canonical tag id and name,
// either via an alias or a direct case-insensitive tag name lookup.
func (e *Expander) resolveCanonical(norm string) (model.TagID, string, bool, error) {
	if canonicalID, ok, err := e.resolver.Resolve(norm); err != nil {
		return 0, "", false, err
	} else if ok {
		var name string
		if err := e.db.QueryRow(`SELECT name FROM tags WHERE id = ?`, int64(canonicalID)).Scan(&name); err != nil {
			return 0, "", false, fmt.Errorf("lookup canonical name: %w", err)
		}
		return canonicalID, name, true, nil
	}

	var tagID int64
	err := e.db.QueryRow(`SELECT id FROM tags WHERE name = ? COLLATE NOCASE`, norm).Scan(&tagID)
	if err == sql.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("lookup tag by name: %w", err)
	}
	return model.TagID(tagID), norm, true, nil
}

// broaderExpansion follows generic edges up to depth hops from
// tagID's tag, adding each hop's target names. Partitive edges are
// never traversed.
func (e *Expander) broaderExpansion(tagID model.TagID, depth int, minConfidence float64) ([]string, error) {
	if depth <= 0 {
		depth = 1
	}

	var out []string
	frontier := []int64{int64(tagID)}
	seen := map[int64]bool{int64(tagID): true}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		rows, err := e.db.Query(
			`SELECT target_tag_id, (SELECT name FROM tags WHERE id = target_tag_id)
			 FROM edges WHERE source_tag_id IN (`+placeholders(len(frontier))+`)
			 AND hierarchy_type = 'generic'
			 AND confidence >= ?`,
			append(int64Args(frontier), minConfidence)...)
		if err != nil {
			return nil, fmt.Errorf("broader expansion query: %w", err)
		}

		var next []int64
		for rows.Next() {
			var targetID int64
			var name string
			if err := rows.Scan(&targetID, &name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan broader target: %w", err)
			}
			if !seen[targetID] {
				seen[targetID] = true
				out = append(out, name)
				next = append(next, targetID)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		frontier = next
	}

	return out, nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// ftsGroup renders a term's expansion set as a parenthesized FTS5 OR
// group. Plain single words are left unquoted so the Porter tokenizer
// can stem them; everything else (phrases, hyphenated tag names) is
// emitted as a quoted phrase, since a bare '-' is a syntax error in an
// FTS5 MATCH expression.
func ftsGroup(expansion []string) string {
	parts := make([]string, len(expansion))
	for i, e := range expansion {
		if bareword(e) {
			parts[i] = e
		} else {
			parts[i] = fmt.Sprintf("%q", e)
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// bareword reports whether s can appear unquoted in an FTS5 MATCH
// expression (alphanumerics and underscore only).
func bareword(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			return false
		}
	}
	return true
}
