package search

import (
	"fmt"

	"cons/internal/alias"
	"cons/internal/model"
	"cons/internal/store"
	"cons/internal/tagnorm"
)

// ActivationStats exposes the statistics DualSearch uses for
// cold-start degradation decisions.
type ActivationStats struct {
	AverageActivation float64
	ActivatedTags     int
}

// GraphSearch runs the spreading-activation channel.
type GraphSearch struct {
	s        *store.LocalStore
	resolver *alias.Resolver
}

// NewGraphSearch builds a GraphSearch over s.
func NewGraphSearch(s *store.LocalStore) *GraphSearch {
	return &GraphSearch{s: s, resolver: alias.New(s)}
}

// SeedTags resolves a whitespace-split query into seed tag ids, one
// per distinct tag found via alias or direct lookup, each with
// initial activation 1.0.
func (g *GraphSearch) SeedTags(terms []string) (map[model.TagID]float64, error) {
	seeds := make(map[model.TagID]float64)
	for _, term := range terms {
		norm := tagnorm.Normalize(term)
		if norm == "" {
			continue
		}
		if id, ok, err := g.resolver.Resolve(norm); err != nil {
			return nil, err
		} else if ok {
			seeds[id] = 1.0
			continue
		}
		if tag, err := g.s.TagByName(norm); err == nil {
			seeds[tag.ID] = 1.0
		} else if err != model.ErrTagNotFound {
			return nil, err
		}
	}
	return seeds, nil
}

// Activate runs SpreadingActivation from seeds, applies the
// centrality boost, and returns the boosted activation per tag plus the
// statistics used for cold-start degradation.
func (g *GraphSearch) Activate(seeds map[model.TagID]float64, decay, threshold float64, maxHops int) (map[model.TagID]float64, ActivationStats, error) {
	raw, err := g.s.ActivateTags(seeds, decay, threshold, maxHops)
	if err != nil {
		return nil, ActivationStats{}, fmt.Errorf("activate tags: %w", err)
	}
	if len(raw) == 0 {
		return raw, ActivationStats{}, nil
	}

	ids := make([]model.TagID, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}

	maxDegree, err := g.s.MaxDegreeCentrality()
	if err != nil {
		return nil, ActivationStats{}, fmt.Errorf("max degree centrality: %w", err)
	}
	degrees, err := g.s.DegreeCentrality(ids)
	if err != nil {
		return nil, ActivationStats{}, fmt.Errorf("degree centrality: %w", err)
	}

	boosted := make(map[model.TagID]float64, len(raw))
	var sum float64
	for id, activation := range raw {
		boost := 1.0
		if maxDegree > 0 {
			boost = 1 + 0.3*(float64(degrees[id])/float64(maxDegree))
		}
		v := activation * boost
		boosted[id] = v
		sum += v
	}

	stats := ActivationStats{
		AverageActivation: sum / float64(len(boosted)),
		ActivatedTags:     len(boosted),
	}
	return boosted, stats, nil
}

// ScoreNotes computes, for each note carrying at least one activated
// tag, note_score = Σ tag_activation × assignment.confidence,
// min-max normalized to [0, 1] across the result set.
func (g *GraphSearch) ScoreNotes(activation map[model.TagID]float64) ([]ScoredNote, error) {
	if len(activation) == 0 {
		return nil, nil
	}

	ids := make([]model.TagID, 0, len(activation))
	for id := range activation {
		ids = append(ids, id)
	}

	byNote, err := g.s.NoteTagActivations(ids)
	if err != nil {
		return nil, fmt.Errorf("note tag activations: %w", err)
	}
	if len(byNote) == 0 {
		return nil, nil
	}

	rawScores := make(map[model.NoteID]float64, len(byNote))
	noteIDs := make([]model.NoteID, 0, len(byNote))
	var max float64
	for noteID, pairs := range byNote {
		var score float64
		for _, p := range pairs {
			score += activation[p.TagID] * p.Confidence
		}
		rawScores[noteID] = score
		noteIDs = append(noteIDs, noteID)
		if score > max {
			max = score
		}
	}

	notes, err := g.s.GetNotesByIDs(noteIDs)
	if err != nil {
		return nil, fmt.Errorf("load activated notes: %w", err)
	}

	out := make([]ScoredNote, 0, len(rawScores))
	for id, score := range rawScores {
		n, ok := notes[id]
		if !ok {
			continue
		}
		relevance := 0.0
		if max > 0 {
			relevance = score / max
		}
		out = append(out, ScoredNote{Note: n, Relevance: relevance})
	}
	return out, nil
}
