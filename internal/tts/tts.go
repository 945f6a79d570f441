// Package tts defines the boundary to the external speech synthesis engine.
//
// ttsgen never synthesizes audio itself. A Synthesizer backend receives the
// resolved parameters for one model invocation and writes the resulting audio
// file to the requested path. Backends live in sub-packages: coqui talks to an
// HTTP sidecar, cli runs the Coqui `tts` command.
package tts

import (
	"context"
	"time"
)

// Params is the resolved parameter set for one synthesis call.
type Params struct {
	Text       string
	OutputPath string

	// SpeakerSamplePath is a local voice sample used for cloning.
	SpeakerSamplePath string

	// Language is the language code passed to multilingual models.
	Language string

	// Speaker names a built-in voice.
	Speaker string
}

// SpeakerList is the answer to a built-in speaker query. Available is false
// when the model exposes no speaker attribute at all, which is distinct from
// an empty list.
type SpeakerList struct {
	Names     []string
	Available bool
}

// First returns the first speaker, if any.
func (l SpeakerList) First() (string, bool) {
	if !l.Available || len(l.Names) == 0 {
		return "", false
	}
	return l.Names[0], true
}

// Contains reports whether name is one of the built-in speakers.
func (l SpeakerList) Contains(name string) bool {
	for _, n := range l.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Synthesizer is the external engine.
type Synthesizer interface {
	// Name returns the backend identifier (e.g. "coqui", "cli").
	Name() string

	// Synthesize generates speech with the given model and writes an audio
	// file to params.OutputPath.
	Synthesize(ctx context.Context, modelID string, params Params) error

	// BuiltInSpeakers queries the voices shipped with a model. Loading the
	// model to answer may be expensive.
	BuiltInSpeakers(ctx context.Context, modelID string) (SpeakerList, error)

	// HealthCheck reports whether the engine can accept work.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// Options configures an engine at construction time. It replaces the
// process-wide environment the engine historically read on import.
type Options struct {
	// ModelCacheDir is where pretrained models are downloaded and cached.
	ModelCacheDir string

	// AcceptLicense agrees to the model license terms non-interactively.
	AcceptLicense bool

	// GPU requests GPU inference.
	GPU bool

	// Timeout bounds a single engine call. Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration
}

// Environment returns the variables the Coqui runtime reads for these
// options, in KEY=VALUE form.
func (o Options) Environment() []string {
	var env []string
	if o.ModelCacheDir != "" {
		env = append(env, "TTS_HOME="+o.ModelCacheDir)
	}
	if o.AcceptLicense {
		env = append(env, "COQUI_TOS_AGREED=1")
	}
	return env
}
