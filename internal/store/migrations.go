package store

import (
	"database/sql"
	"fmt"

	"cons/internal/logging"
)

// migration describes one additive schema change: add Column to Table
// with Def if it is not already present. Applied in order, idempotent,
// non-fatal on a database already at the target shape.
type migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations is empty at the initial schema. New columns added
// to notes/tags/edges/etc. in later releases get appended here rather
// than edited into schema.go, so existing databases upgrade in place.
var pendingMigrations = []migration{}

// RunMigrations applies any pending additive migrations to db. Called
// once after schema creation on every store open.
func RunMigrations(db *sql.DB) error {
	log := logging.Get(logging.CategoryStore)
	applied, skipped := 0, 0

	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			log.Warn("migration failed for %s.%s: %v", m.Table, m.Column, err)
			skipped++
			continue
		}
		log.Info("migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	if applied > 0 || skipped > 0 {
		log.Debug("migrations complete: applied=%d skipped=%d", applied, skipped)
	}
	return nil
}

// tableExists reports whether table exists in db's sqlite_master.
func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	return err == nil && count > 0
}

// columnExists reports whether column exists on table via PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
