package store

// schema is applied idempotently on every open via CREATE ... IF NOT
// EXISTS, grouped CREATE TABLE / CREATE INDEX blocks with FKs declared
// inline and ON DELETE CASCADE on every child table.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	content_enhanced TEXT,
	enhanced_at INTEGER,
	enhancement_model TEXT,
	enhancement_confidence REAL
);
CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	degree_centrality INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	source TEXT NOT NULL DEFAULT 'user',
	confidence REAL NOT NULL DEFAULT 1.0,
	created_at INTEGER NOT NULL,
	verified INTEGER NOT NULL DEFAULT 0,
	model_version TEXT,
	PRIMARY KEY (note_id, tag_id),
	FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_note_tags_note ON note_tags(note_id);
CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_id);

CREATE TABLE IF NOT EXISTS tag_aliases (
	alias TEXT PRIMARY KEY COLLATE NOCASE,
	canonical_tag_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at INTEGER NOT NULL,
	model_version TEXT,
	FOREIGN KEY (canonical_tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tag_aliases_canonical ON tag_aliases(canonical_tag_id);

CREATE TABLE IF NOT EXISTS edges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_tag_id INTEGER NOT NULL,
	target_tag_id INTEGER NOT NULL,
	confidence REAL NOT NULL,
	hierarchy_type TEXT CHECK (hierarchy_type IN ('generic', 'partitive') OR hierarchy_type IS NULL),
	valid_from INTEGER,
	valid_until INTEGER,
	source TEXT NOT NULL DEFAULT 'user',
	model_version TEXT,
	verified INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (source_tag_id) REFERENCES tags(id) ON DELETE CASCADE,
	FOREIGN KEY (target_tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_tag_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_tag_id);
CREATE INDEX IF NOT EXISTS idx_edges_created_at ON edges(created_at);
CREATE INDEX IF NOT EXISTS idx_edges_updated_at ON edges(updated_at);
CREATE INDEX IF NOT EXISTS idx_edges_hierarchy_type ON edges(hierarchy_type);

CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	note_id UNINDEXED,
	content,
	content_enhanced,
	tags,
	tokenize = 'porter'
);
`

// fts5Triggers keeps notes_fts synchronized with notes and note_tags.
// A note's FTS row is rebuilt (delete+insert) on any mutation to its
// content, enhancement, or tag set, so it always reflects the current
// concatenation of tag names (Testable Properties, FTS consistency).
const fts5Triggers = `
CREATE TRIGGER IF NOT EXISTS notes_fts_after_insert
AFTER INSERT ON notes
BEGIN
	INSERT INTO notes_fts (note_id, content, content_enhanced, tags)
	VALUES (new.id, new.content, new.content_enhanced, '');
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_after_update
AFTER UPDATE OF content, content_enhanced ON notes
BEGIN
	DELETE FROM notes_fts WHERE note_id = old.id;
	INSERT INTO notes_fts (note_id, content, content_enhanced, tags)
	VALUES (new.id, new.content, new.content_enhanced,
		COALESCE((SELECT group_concat(t.name, ' ') FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = new.id), ''));
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_after_tag_insert
AFTER INSERT ON note_tags
BEGIN
	DELETE FROM notes_fts WHERE note_id = new.note_id;
	INSERT INTO notes_fts (note_id, content, content_enhanced, tags)
	SELECT n.id, n.content, n.content_enhanced,
		COALESCE((SELECT group_concat(t.name, ' ') FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = n.id), '')
	FROM notes n WHERE n.id = new.note_id;
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_after_note_delete
AFTER DELETE ON notes
BEGIN
	DELETE FROM notes_fts WHERE note_id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_after_tag_delete
AFTER DELETE ON note_tags
BEGIN
	DELETE FROM notes_fts WHERE note_id = old.note_id;
	INSERT INTO notes_fts (note_id, content, content_enhanced, tags)
	SELECT n.id, n.content, n.content_enhanced,
		COALESCE((SELECT group_concat(t.name, ' ') FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id = n.id), '')
	FROM notes n WHERE n.id = old.note_id;
END;
`
