// Package model defines the property-graph types shared across cons:
// notes, tags, tag assignments, aliases, and the directed edges between
// tags. All identifiers are opaque newtypes over signed 64-bit row ids.
package model

import "time"

// NoteID identifies a captured note.
type NoteID int64

// TagID identifies a canonical tag.
type TagID int64

// EdgeID identifies a directed tag-to-tag relationship.
type EdgeID int64

// TagSource records whether a piece of provenance came from the user or
// was inferred by an LLM.
type TagSource string

const (
	SourceUser TagSource = "user"
	SourceLLM  TagSource = "llm"
)

// HierarchyType classifies an Edge as SKOS/XKOS generic (is-a) or
// partitive (part-of). The zero value means "unclassified".
type HierarchyType string

const (
	HierarchyGeneric   HierarchyType = "generic"
	HierarchyPartitive HierarchyType = "partitive"
)

// Note is a captured unit of content. Content is immutable after
// creation; ContentEnhanced is set at most once.
type Note struct {
	ID                     NoteID
	Content                string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	ContentEnhanced        *string
	EnhancedAt             *time.Time
	EnhancementModel       *string
	EnhancementConfidence  *float64
	Assignments            []TagAssignment
}

// Tag is a canonical vocabulary term. Name always equals
// tagnorm.Normalize(Name).
type Tag struct {
	ID               TagID
	Name             string
	DegreeCentrality int64
}

// TagAssignment is a (note, tag) pair carrying provenance.
type TagAssignment struct {
	NoteID       NoteID
	TagID        TagID
	TagName      string
	Source       TagSource
	Confidence   float64
	ModelVersion *string
	Verified     bool
	CreatedAt    time.Time
}

// TagAlias is an alternate label mapping to a canonical tag. Aliases
// never chain: an alias's text can never equal the name of a tag that
// is itself the target of another alias.
type TagAlias struct {
	Alias          string
	CanonicalTagID TagID
	CanonicalName  string
	Source         TagSource
	Confidence     float64
	ModelVersion   *string
	CreatedAt      time.Time
}

// Edge is a directed tag-to-tag relationship, always pointing from the
// narrower (source) to the broader (target) concept.
type Edge struct {
	ID             EdgeID
	SourceTagID    TagID
	TargetTagID    TagID
	Confidence     float64
	HierarchyType  HierarchyType // empty means unclassified
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Source         TagSource
	ModelVersion   *string
	Verified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
