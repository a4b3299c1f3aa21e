// Package hierarchy implements HierarchySuggester: prompting an
// LlmClient to classify pairs of tags as SKOS/XKOS generic (is-a) or
// partitive (part-of) relationships, and RunOnce, which drives that
// suggestion process over the store's tags and persists confident
// suggestions as edges: propose relationships, then commit each
// independently so one bad classification never aborts the batch.
package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cons/internal/llmclient"
	"cons/internal/llmparse"
	"cons/internal/logging"
	"cons/internal/model"
	"cons/internal/service"
	"cons/internal/tagnorm"
)

// minConfidence is the threshold below which a classification is
// dropped: classifications need confidence >= 0.7 to be kept.
const minConfidence = 0.7

// Suggestion is one classified tag-to-tag relationship.
type Suggestion struct {
	SourceTag     string
	TargetTag     string
	HierarchyType model.HierarchyType
	Confidence    float64
}

// Suggester classifies relationships among a set of tag names.
type Suggester struct {
	client llmclient.Client
}

// New builds a Suggester over client.
func New(client llmclient.Client) *Suggester {
	return &Suggester{client: client}
}

// Suggest prompts the LLM with tagNames and returns the classified
// relationships that clear minConfidence, reference only tags in
// tagNames, and carry a valid hierarchy_type. Any failure (LLM error,
// malformed JSON) is absorbed into an empty slice, never an error.
func (s *Suggester) Suggest(ctx context.Context, modelName string, tagNames []string) []Suggestion {
	log := logging.Get(logging.CategoryHierarchy)
	if len(tagNames) < 2 {
		return nil
	}

	raw, err := s.client.Generate(ctx, modelName, buildPrompt(tagNames))
	if err != nil {
		log.Warn("hierarchy: generate failed: %v", err)
		return nil
	}

	suggestions, err := parseSuggestions(raw, tagNames)
	if err != nil {
		log.Warn("hierarchy: parse failed: %v", err)
		return nil
	}
	return suggestions
}

func buildPrompt(tagNames []string) string {
	var b strings.Builder
	b.WriteString("You classify hierarchical relationships between tags in a personal knowledge base, following the XKOS vocabulary.\n")
	b.WriteString("Two kinds of relationship exist:\n")
	b.WriteString("  - generic (is-a): the source tag names a kind of the target tag, e.g. \"rust\" is-a \"programming-language\".\n")
	b.WriteString("  - partitive (part-of): the source tag names a part or component of the target tag, e.g. \"attention\" is part-of \"transformer\".\n")
	b.WriteString("Only propose a relationship you are at least 0.7 confident about; omit anything weaker.\n")
	b.WriteString("Respond with a single JSON array, one element per relationship, and nothing else:\n")
	b.WriteString(`[{"source_tag": "rust", "target_tag": "programming-language", "hierarchy_type": "generic", "confidence": 0.9}, ` +
		`{"source_tag": "attention", "target_tag": "transformer", "hierarchy_type": "partitive", "confidence": 0.85}]` + "\n\n")
	b.WriteString("Tags:\n")
	for _, t := range tagNames {
		b.WriteString("- " + t + "\n")
	}
	return b.String()
}

type suggestionJSON struct {
	SourceTag     string  `json:"source_tag"`
	TargetTag     string  `json:"target_tag"`
	HierarchyType string  `json:"hierarchy_type"`
	Confidence    float64 `json:"confidence"`
}

// parseSuggestions extracts the first JSON array in raw, drops
// anything below minConfidence, referencing an unknown tag, or
// carrying an invalid hierarchy_type. Parse failures return an error
// so Suggest can log and absorb (never panics, never throws past
// this package).
func parseSuggestions(raw string, tagNames []string) ([]Suggestion, error) {
	arr := llmparse.ExtractJSONArray(raw)
	if arr == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var decoded []suggestionJSON
	if err := json.Unmarshal([]byte(arr), &decoded); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}

	known := make(map[string]bool, len(tagNames))
	for _, t := range tagNames {
		known[tagnorm.Normalize(t)] = true
	}

	var out []Suggestion
	for _, d := range decoded {
		confidence := llmparse.Clamp01(d.Confidence)
		if confidence < minConfidence {
			continue
		}
		htype := model.HierarchyType(d.HierarchyType)
		if htype != model.HierarchyGeneric && htype != model.HierarchyPartitive {
			continue
		}
		source := tagnorm.Normalize(d.SourceTag)
		target := tagnorm.Normalize(d.TargetTag)
		if !known[source] || !known[target] || source == target {
			continue
		}
		out = append(out, Suggestion{SourceTag: source, TargetTag: target, HierarchyType: htype, Confidence: confidence})
	}
	return out, nil
}

// RunOnce drives the full "hierarchy suggest" command: fetch
// every tag with at least one assignment, classify relationships
// among them, and persist the confident ones as llm-sourced edges.
// Each edge creation is attempted independently; one failure is
// logged and does not abort the batch.
func RunOnce(ctx context.Context, svc *service.NoteService, suggester *Suggester, modelName string) ([]Suggestion, error) {
	log := logging.Get(logging.CategoryHierarchy)

	tags, err := svc.Store().TagsWithAssignments()
	if err != nil {
		return nil, fmt.Errorf("list tags with assignments: %w", err)
	}

	names := make([]string, len(tags))
	byName := make(map[string]model.TagID, len(tags))
	for i, t := range tags {
		names[i] = t.Name
		byName[t.Name] = t.ID
	}

	suggestions := suggester.Suggest(ctx, modelName, names)

	for _, s := range suggestions {
		sourceID, ok := byName[s.SourceTag]
		if !ok {
			continue
		}
		targetID, ok := byName[s.TargetTag]
		if !ok {
			continue
		}
		htype := s.HierarchyType
		if _, err := svc.CreateEdge(sourceID, targetID, s.Confidence, &htype, model.SourceLLM, &modelName); err != nil {
			log.Warn("hierarchy: edge create failed for %s->%s: %v", s.SourceTag, s.TargetTag, err)
			continue
		}
	}

	return suggestions, nil
}
