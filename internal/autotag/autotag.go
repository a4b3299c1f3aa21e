// Package autotag implements AutoTagger: prompting an LlmClient for
// tags about a note's content and parsing its JSON response into a
// {tag: confidence} map. Every failure mode (LLM error, malformed
// JSON, empty response) degrades to an empty map rather than
// propagating - capture must never block on this.
package autotag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cons/internal/llmclient"
	"cons/internal/llmparse"
	"cons/internal/logging"
	"cons/internal/tagnorm"
)

// Tagger generates candidate tags for a note's content.
type Tagger struct {
	client llmclient.Client
}

// New builds a Tagger over client.
func New(client llmclient.Client) *Tagger {
	return &Tagger{client: client}
}

// GenerateTags prompts the LLM for 3-7 lowercase hyphenated tags about
// content and returns {tag: confidence}. Any failure (network error,
// timeout, unparsable output) is absorbed and yields an empty map.
func (t *Tagger) GenerateTags(ctx context.Context, model, content string) map[string]float64 {
	log := logging.Get(logging.CategoryLLM)

	raw, err := t.client.Generate(ctx, model, buildPrompt(content))
	if err != nil {
		log.Warn("autotag: generate failed: %v", err)
		return map[string]float64{}
	}

	tags, err := parseTags(raw)
	if err != nil {
		log.Warn("autotag: parse failed: %v", err)
		return map[string]float64{}
	}
	return tags
}

// buildPrompt asks the LLM to judge aboutness (what the note is
// substantively about) rather than mere mention, and to return tags
// only, as a flat JSON object.
func buildPrompt(content string) string {
	var b strings.Builder
	b.WriteString("You are tagging a personal note for a knowledge base.\n")
	b.WriteString("Identify 3 to 7 tags that capture what the note is ABOUT, not every term it merely mentions in passing.\n")
	b.WriteString("Each tag must be lowercase and hyphenated (letters, digits, and hyphens only), e.g. \"machine-learning\", not \"Machine Learning\".\n")
	b.WriteString("Respond with a single JSON object mapping each tag to a confidence between 0 and 1, and nothing else - no prose, no markdown fences.\n")
	b.WriteString("Example: {\"rust\": 0.95, \"async-programming\": 0.8}\n\n")
	b.WriteString("Note:\n")
	b.WriteString(content)
	return b.String()
}

// parseTags extracts the first JSON object in raw, normalizes every
// key with tagnorm (trust but verify the model followed the format
// instruction), clamps confidences to [0, 1], and drops empty keys.
func parseTags(raw string) (map[string]float64, error) {
	obj := llmparse.ExtractJSONObject(raw)
	if obj == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var decoded map[string]float64
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		return nil, fmt.Errorf("decode tag map: %w", err)
	}

	out := make(map[string]float64, len(decoded))
	for k, v := range decoded {
		norm := tagnorm.Normalize(k)
		if norm == "" {
			continue
		}
		out[norm] = llmparse.Clamp01(v)
	}
	return out, nil
}
