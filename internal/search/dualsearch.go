package search

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cons/internal/config"
	"cons/internal/model"
	"cons/internal/store"
)

// DualSearchResult is one merged hit from the fused FTS + graph
// channels.
type DualSearchResult struct {
	Note        *model.Note
	FinalScore  float64
	FtsScore    *float64
	GraphScore  *float64
	FoundByBoth bool
}

// DualSearchMetadata reports why and how much of each channel ran, for
// callers that want to explain a result set.
type DualSearchMetadata struct {
	GraphSkipped     bool
	SkipReason       string
	FtsResultCount   int
	GraphResultCount int
}

// DualSearch runs the FTS and spreading-activation channels
// concurrently and fuses them with an additive RRF-style scorer.
type DualSearch struct {
	fts   *FtsSearch
	graph *GraphSearch
}

// NewDualSearch builds a DualSearch over s.
func NewDualSearch(s *store.LocalStore) *DualSearch {
	return &DualSearch{fts: NewFtsSearch(s), graph: NewGraphSearch(s)}
}

// Search performs the dual-channel merge. limit <= 0 means
// unbounded. An empty query is a user error.
func (d *DualSearch) Search(ctx context.Context, q string, limit int) ([]DualSearchResult, DualSearchMetadata, error) {
	if strings.TrimSpace(q) == "" {
		return nil, DualSearchMetadata{}, model.ErrEmptyQuery
	}

	var ftsHits []ScoredNote
	var graphHits []ScoredNote
	var meta DualSearchMetadata

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := d.fts.Search(q, 0)
		if err != nil {
			return err
		}
		ftsHits = hits
		return nil
	})

	g.Go(func() error {
		_ = gctx
		terms := strings.Fields(q)
		seeds, err := d.graph.SeedTags(terms)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			meta.GraphSkipped = true
			meta.SkipReason = "no seed tags"
			return nil
		}

		spreading := config.Spreading()
		activation, stats, err := d.graph.Activate(seeds, spreading.Decay, spreading.Threshold, spreading.MaxHops)
		if err != nil {
			return err
		}

		fusion := config.DualSearch()
		if stats.AverageActivation < fusion.MinAvgActivation || stats.ActivatedTags < fusion.MinActivatedTags {
			meta.GraphSkipped = true
			meta.SkipReason = "sparse graph activation"
			return nil
		}

		hits, err := d.graph.ScoreNotes(activation)
		if err != nil {
			return err
		}
		graphHits = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, DualSearchMetadata{}, err
	}

	meta.FtsResultCount = len(ftsHits)
	meta.GraphResultCount = len(graphHits)

	fusion := config.DualSearch()
	merged := make(map[model.NoteID]*DualSearchResult)
	order := make([]model.NoteID, 0, len(ftsHits)+len(graphHits))

	for _, h := range ftsHits {
		h := h
		score := h.Relevance
		merged[h.Note.ID] = &DualSearchResult{Note: h.Note, FinalScore: score * fusion.FtsWeight, FtsScore: &h.Relevance}
		order = append(order, h.Note.ID)
	}
	for _, h := range graphHits {
		h := h
		if r, ok := merged[h.Note.ID]; ok {
			r.GraphScore = &h.Relevance
			r.FoundByBoth = true
			r.FinalScore = *r.FtsScore*fusion.FtsWeight + h.Relevance*fusion.GraphWeight + fusion.IntersectionBonus
			continue
		}
		merged[h.Note.ID] = &DualSearchResult{Note: h.Note, FinalScore: h.Relevance * fusion.GraphWeight, GraphScore: &h.Relevance}
		order = append(order, h.Note.ID)
	}

	results := make([]DualSearchResult, 0, len(merged))
	seen := make(map[model.NoteID]bool, len(merged))
	for _, id := range order {
		if seen[id] {
			continue
		}
		seen[id] = true
		results = append(results, *merged[id])
	}

	sort.Slice(results, func(i, j int) bool { return results[i].FinalScore > results[j].FinalScore })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, meta, nil
}
