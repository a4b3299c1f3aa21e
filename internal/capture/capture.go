// Package capture implements the public capture entry point:
// validate, insert the note durably, then best-effort enhance and
// auto-tag it. Everything after the note insert is best-effort;
// capture is the fail-safe firewall: a cancelled or failed LLM call at
// any later stage must never take the note with it.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cons/internal/alias"
	"cons/internal/autotag"
	"cons/internal/enhance"
	"cons/internal/logging"
	"cons/internal/model"
	"cons/internal/service"
)

// Pipeline composes NoteService with the best-effort enhancement and
// tagging steps.
type Pipeline struct {
	svc      *service.NoteService
	tagger   *autotag.Tagger
	enhancer *enhance.Enhancer
	resolver *alias.Resolver
	model    string
}

// New builds a Pipeline. modelName is the LLM model passed to every
// Generate call this pipeline makes.
func New(svc *service.NoteService, tagger *autotag.Tagger, enhancer *enhance.Enhancer, resolver *alias.Resolver, modelName string) *Pipeline {
	return &Pipeline{svc: svc, tagger: tagger, enhancer: enhancer, resolver: resolver, model: modelName}
}

// Capture runs the full pipeline and returns the durably-created
// note's id. Steps after note creation (enhancement, auto-tagging,
// opportunistic alias creation) can fail in any combination without
// affecting the returned id or the note already written in step 2.
func (p *Pipeline) Capture(ctx context.Context, content string, manualTags []string) (model.NoteID, error) {
	if strings.TrimSpace(content) == "" {
		return 0, model.ErrEmptyContent
	}

	correlationID := uuid.New().String()
	log := logging.Get(logging.CategoryCapture)
	log.Fields("INFO", "capture started", map[string]interface{}{"correlation_id": correlationID})

	note, err := p.svc.CreateNote(content, manualTags)
	if err != nil {
		return 0, fmt.Errorf("capture: create note: %w", err)
	}

	p.enhance(ctx, note.ID, content, correlationID)
	llmTags := p.autotag(ctx, note.ID, content, correlationID)
	p.opportunisticAliases(llmTags, correlationID)

	log.Fields("INFO", "capture finished", map[string]interface{}{"correlation_id": correlationID, "note_id": int64(note.ID)})
	return note.ID, nil
}

// enhance attempts NoteEnhancer and, on success, attaches the result.
// Any error (timeout, network, parse failure) is logged and absorbed;
// the original note content is left untouched.
func (p *Pipeline) enhance(ctx context.Context, noteID model.NoteID, content, correlationID string) {
	log := logging.Get(logging.CategoryCapture)

	result, err := p.enhancer.Enhance(ctx, p.model, content)
	if err != nil {
		log.Fields("WARN", "enhancement absorbed", map[string]interface{}{
			"correlation_id": correlationID, "note_id": int64(noteID), "error": err.Error(),
		})
		return
	}

	if err := p.svc.UpdateEnhancement(noteID, result.EnhancedContent, p.model, result.Confidence); err != nil {
		log.Fields("WARN", "enhancement attach absorbed", map[string]interface{}{
			"correlation_id": correlationID, "note_id": int64(noteID), "error": err.Error(),
		})
	}
}

// autotag attempts AutoTagger against the original content (never the
// enhanced content, by policy) and attaches whatever
// tags it returns. Returns every tag AutoTagger suggested (name and
// confidence), including any whose attach failed, for step 5's
// opportunistic alias creation.
func (p *Pipeline) autotag(ctx context.Context, noteID model.NoteID, content, correlationID string) map[string]float64 {
	log := logging.Get(logging.CategoryCapture)

	llmTags := p.tagger.GenerateTags(ctx, p.model, content)
	if len(llmTags) == 0 {
		return llmTags
	}

	modelVersion := p.model
	for name, confidence := range llmTags {
		if err := p.svc.AddTagsToNote(noteID, []string{name}, model.SourceLLM, confidence, &modelVersion); err != nil {
			log.Fields("WARN", "auto-tag attach absorbed", map[string]interface{}{
				"correlation_id": correlationID, "note_id": int64(noteID), "tag": name, "error": err.Error(),
			})
		}
	}
	return llmTags
}

// opportunisticAliases handles opportunistic alias creation: for any LLM-suggested
// tag whose normalized form differs from an existing canonical tag
// but is similar enough to mean the same thing (see
// alias_heuristic.go), record it as an alias rather than leave it as
// an unrelated second canonical tag. Failures (including alias-chain
// violations) are silent - this step must never block capture.
func (p *Pipeline) opportunisticAliases(llmTags map[string]float64, correlationID string) {
	if len(llmTags) == 0 {
		return
	}

	existing, err := p.svc.Store().ListCanonicalTagNames()
	if err != nil {
		return
	}

	modelVersion := p.model
	log := logging.Get(logging.CategoryCapture)
	for name, confidence := range llmTags {
		candidate, ok := findAliasCandidate(name, existing)
		if !ok {
			continue
		}
		if err := p.resolver.Create(name, candidate.ID, model.SourceLLM, confidence, &modelVersion); err != nil {
			log.Fields("DEBUG", "opportunistic alias skipped", map[string]interface{}{
				"correlation_id": correlationID, "suggested": name, "candidate": candidate.Name, "error": err.Error(),
			})
		}
	}
}
