// Package synth turns a synthesis request into the parameters for one engine
// call and orchestrates the full generate flow around it.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nadzzz/ttsgen/internal/apperr"
	"github.com/nadzzz/ttsgen/internal/catalog"
	"github.com/nadzzz/ttsgen/internal/storage"
	"github.com/nadzzz/ttsgen/internal/tts"
)

const (
	// DefaultFallbackSpeaker is used for multi-speaker models when no
	// built-in speaker can be discovered.
	DefaultFallbackSpeaker = "female"

	// DefaultCloningLanguage is sent to voice-cloning models when the
	// caller gives no language.
	DefaultCloningLanguage = "en"
)

// Request is a validated synthesis request.
type Request struct {
	Text       string
	ModelID    string
	OutputPath string

	Language          string
	Speaker           string
	SpeakerSamplePath string
}

// SpeakerSource answers built-in speaker queries.
type SpeakerSource interface {
	BuiltInSpeakers(ctx context.Context, modelID string) (tts.SpeakerList, error)
}

// BuilderOptions tunes speaker and language resolution.
type BuilderOptions struct {
	FallbackSpeaker        string
	DefaultCloningLanguage string
}

// Builder resolves engine parameters from a request and a catalog entry.
type Builder struct {
	catalog  *catalog.Catalog
	speakers SpeakerSource

	fallbackSpeaker string
	cloningLanguage string
}

// NewBuilder creates a Builder. Empty options select the package defaults.
func NewBuilder(cat *catalog.Catalog, speakers SpeakerSource, opts BuilderOptions) *Builder {
	b := &Builder{
		catalog:         cat,
		speakers:        speakers,
		fallbackSpeaker: opts.FallbackSpeaker,
		cloningLanguage: opts.DefaultCloningLanguage,
	}
	if b.fallbackSpeaker == "" {
		b.fallbackSpeaker = DefaultFallbackSpeaker
	}
	if b.cloningLanguage == "" {
		b.cloningLanguage = DefaultCloningLanguage
	}
	return b
}

// Build resolves the parameters for one engine call.
func (b *Builder) Build(ctx context.Context, req Request, model catalog.Model) (tts.Params, error) {
	const op = "synth.Build"

	params := tts.Params{
		Text:       req.Text,
		OutputPath: req.OutputPath,
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language != "" {
		if err := b.checkLanguage(op, model.ID, language); err != nil {
			return tts.Params{}, err
		}
	}

	hasSample := req.SpeakerSamplePath != "" && storage.FileExists(req.SpeakerSamplePath)
	if req.SpeakerSamplePath != "" && !hasSample {
		slog.Warn("voice sample missing at synthesis time, ignoring", "path", req.SpeakerSamplePath)
	}

	switch model.Family {
	case catalog.FamilyVoiceCloning:
		if !hasSample {
			speaker, ok := b.pickBuiltIn(ctx, model.ID, req.Speaker)
			if !ok {
				return tts.Params{}, apperr.MissingInput(op,
					fmt.Sprintf("model %s needs a voice sample or a built-in speaker, and it has no built-in speakers", model.ID))
			}
			params.Speaker = speaker
		}
		if language == "" {
			language = b.cloningLanguage
		}

	case catalog.FamilyMultiSpeaker:
		if !hasSample {
			if req.Speaker != "" {
				params.Speaker = req.Speaker
			} else if speaker, ok := b.pickBuiltIn(ctx, model.ID, ""); ok {
				params.Speaker = speaker
			} else {
				params.Speaker = b.fallbackSpeaker
			}
		}

	default:
		params.Speaker = req.Speaker
	}

	if hasSample {
		params.SpeakerSamplePath = req.SpeakerSamplePath
	}

	if language != "" && model.Multilingual() {
		params.Language = language
	}

	return params, nil
}

func (b *Builder) checkLanguage(op, modelID, language string) error {
	supported, ok := b.catalog.SupportedLanguages(modelID)
	if !ok || slices.Contains(supported, language) {
		return nil
	}

	msg := fmt.Sprintf("model %s does not support language %q", modelID, language)
	alternatives := b.catalog.Alternatives(language)
	if len(alternatives) > 0 {
		msg += ", try one of the suggested models"
	}
	return apperr.Compatibility(op, msg, supported, alternatives)
}

// pickBuiltIn returns want when the model ships it, otherwise the first
// built-in speaker. ok is false when the model has none or the query failed.
func (b *Builder) pickBuiltIn(ctx context.Context, modelID, want string) (string, bool) {
	if b.speakers == nil {
		return "", false
	}

	list, err := b.speakers.BuiltInSpeakers(ctx, modelID)
	if err != nil {
		slog.Warn("built-in speaker query failed, treating as unavailable", "model", modelID, "error", err)
		return "", false
	}

	if want != "" && list.Contains(want) {
		return want, true
	}
	if want != "" {
		slog.Info("requested speaker not built in, using first available", "model", modelID, "speaker", want)
	}
	return list.First()
}
