package synth

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/nadzzz/ttsgen/internal/tts"
)

var errEngineDown = errors.New("engine down")

// fakeEngine records calls and writes a tiny audio file on success.
type fakeEngine struct {
	mu sync.Mutex

	speakers    tts.SpeakerList
	speakersErr error
	synthErr    error

	calls []tts.Params

	// sampleSeen reports whether the voice sample existed during Synthesize.
	sampleSeen bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Synthesize(_ context.Context, _ string, params tts.Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, params)
	if params.SpeakerSamplePath != "" {
		_, err := os.Stat(params.SpeakerSamplePath)
		f.sampleSeen = err == nil
	}
	if f.synthErr != nil {
		return f.synthErr
	}
	return os.WriteFile(params.OutputPath, []byte("RIFF....WAVE"), 0o600)
}

func (f *fakeEngine) BuiltInSpeakers(_ context.Context, _ string) (tts.SpeakerList, error) {
	return f.speakers, f.speakersErr
}

func (f *fakeEngine) HealthCheck(context.Context) error { return nil }

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) lastCall() tts.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return tts.Params{}
	}
	return f.calls[len(f.calls)-1]
}

type recordingMirror struct {
	paths []string
	err   error
}

func (m *recordingMirror) Upload(_ context.Context, path string) error {
	m.paths = append(m.paths, path)
	return m.err
}
