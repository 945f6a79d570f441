package synth

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nadzzz/ttsgen/internal/apperr"
	"github.com/nadzzz/ttsgen/internal/storage"
	"github.com/nadzzz/ttsgen/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	engine    *fakeEngine
	mirror    *recordingMirror
	outputDir string
	uploadDir string
}

func newFixture(t *testing.T, engine *fakeEngine) fixture {
	t.Helper()

	root := t.TempDir()
	f := fixture{
		engine:    engine,
		mirror:    &recordingMirror{},
		outputDir: filepath.Join(root, "output"),
		uploadDir: filepath.Join(root, "uploads"),
	}
	require.NoError(t, storage.EnsureDirs(f.outputDir, f.uploadDir))

	f.svc = NewService(ServiceConfig{
		Catalog:   newCatalog(t),
		Engine:    engine,
		Intake:    storage.NewIntake(f.uploadDir, 1<<20),
		OutputDir: f.outputDir,
		Mirror:    f.mirror,
	})
	return f
}

func uploads(t *testing.T, dir string) []os.DirEntry {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestGenerate_EnglishModel(t *testing.T) {
	f := newFixture(t, &fakeEngine{})

	res, err := f.svc.Generate(context.Background(), GenerateRequest{
		Text:           "Hello",
		ModelID:        englishModel,
		OutputFilename: "out",
	})
	require.NoError(t, err)

	assert.Equal(t, "out.wav", res.Filename)
	assert.True(t, strings.HasSuffix(res.Path, "out.wav"))
	assert.FileExists(t, filepath.Join(f.outputDir, "out.wav"))

	call := f.engine.lastCall()
	assert.Empty(t, call.Speaker)
	assert.Empty(t, call.Language)
	assert.Equal(t, []string{res.Path}, f.mirror.paths)
}

func TestGenerate_ExistingOutputGetsSuffix(t *testing.T) {
	f := newFixture(t, &fakeEngine{})
	require.NoError(t, os.WriteFile(filepath.Join(f.outputDir, "out.wav"), []byte("old"), 0o600))

	res, err := f.svc.Generate(context.Background(), GenerateRequest{
		Text: "Hello", ModelID: englishModel, OutputFilename: "out.wav",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "out.wav", res.Filename)
	assert.Regexp(t, `^out_[0-9a-f]{8}\.wav$`, res.Filename)
}

func TestGenerate_SampleReleasedAfterSuccess(t *testing.T) {
	f := newFixture(t, &fakeEngine{})

	_, err := f.svc.Generate(context.Background(), GenerateRequest{
		Text:           "Hello",
		ModelID:        xttsModel,
		OutputFilename: "clone",
		SampleName:     "me.WAV",
		Sample:         bytes.NewReader([]byte("voice")),
	})
	require.NoError(t, err)

	call := f.engine.lastCall()
	assert.NotEmpty(t, call.SpeakerSamplePath)
	assert.Empty(t, call.Speaker)
	assert.True(t, f.engine.sampleSeen, "sample present during the engine call")
	assert.NoFileExists(t, call.SpeakerSamplePath)
	assert.Empty(t, uploads(t, f.uploadDir))
}

func TestGenerate_SampleReleasedAfterEngineFailure(t *testing.T) {
	f := newFixture(t, &fakeEngine{synthErr: errEngineDown})

	_, err := f.svc.Generate(context.Background(), GenerateRequest{
		Text:           "Hello",
		ModelID:        xttsModel,
		OutputFilename: "clone",
		SampleName:     "me.flac",
		Sample:         bytes.NewReader([]byte("voice")),
	})
	require.Error(t, err)

	assert.True(t, apperr.IsKind(err, apperr.KindEngine))
	assert.ErrorIs(t, err, errEngineDown)
	assert.Empty(t, uploads(t, f.uploadDir))
	assert.Empty(t, f.mirror.paths)
}

func TestGenerate_SampleReleasedAfterBuildFailure(t *testing.T) {
	f := newFixture(t, &fakeEngine{})

	_, err := f.svc.Generate(context.Background(), GenerateRequest{
		Text:           "Hello",
		ModelID:        yourTTSModel,
		OutputFilename: "clone",
		Language:       "ru",
		SampleName:     "me.mp3",
		Sample:         bytes.NewReader([]byte("voice")),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindCompatibility))
	assert.Empty(t, uploads(t, f.uploadDir))
	assert.Empty(t, f.engine.calls)
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  GenerateRequest
		kind apperr.Kind
	}{
		{name: "empty text", req: GenerateRequest{Text: "  ", ModelID: englishModel, OutputFilename: "a"}, kind: apperr.KindValidation},
		{name: "unknown model", req: GenerateRequest{Text: "Hi", ModelID: "tts_models/xx/none", OutputFilename: "a"}, kind: apperr.KindValidation},
		{name: "empty filename", req: GenerateRequest{Text: "Hi", ModelID: englishModel}, kind: apperr.KindValidation},
		{
			name: "bad sample extension",
			req: GenerateRequest{
				Text: "Hi", ModelID: xttsModel, OutputFilename: "a",
				SampleName: "voice.txt", Sample: strings.NewReader("x"),
			},
			kind: apperr.KindUnsupportedFormat,
		},
		{name: "cloning without speakers", req: GenerateRequest{Text: "Hi", ModelID: xttsModel, OutputFilename: "a"}, kind: apperr.KindMissingInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeEngine{})

			_, err := f.svc.Generate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Empty(t, f.engine.calls)
			assert.Empty(t, uploads(t, f.uploadDir))
		})
	}
}

func TestGenerate_MirrorFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, &fakeEngine{})
	f.mirror.err = errEngineDown

	_, err := f.svc.Generate(context.Background(), GenerateRequest{Text: "Hi", ModelID: englishModel, OutputFilename: "m"})
	require.NoError(t, err)
	assert.Len(t, f.mirror.paths, 1)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "out", want: "out.wav"},
		{in: "out.wav", want: "out.wav"},
		{in: "Out.WAV", want: "Out.WAV"},
		{in: "take.mp3", want: "take.mp3.wav"},
		{in: "../../etc/passwd", want: "passwd.wav"},
		{in: "", wantErr: true},
		{in: "dir/", want: "dir.wav"},
		{in: ".wav", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := OutputName(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpeakers(t *testing.T) {
	f := newFixture(t, &fakeEngine{speakers: tts.SpeakerList{Names: []string{"Claribel"}, Available: true}})

	list, err := f.svc.Speakers(context.Background(), xttsModel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Claribel"}, list.Names)

	_, err = f.svc.Speakers(context.Background(), "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	f = newFixture(t, &fakeEngine{speakersErr: errEngineDown})
	_, err = f.svc.Speakers(context.Background(), xttsModel)
	assert.True(t, apperr.IsKind(err, apperr.KindEngine))
}

func TestProbe(t *testing.T) {
	engine := &fakeEngine{speakers: tts.SpeakerList{Names: []string{"Claribel"}, Available: true}}
	f := newFixture(t, engine)

	size, err := f.svc.Probe(context.Background(), xttsModel)
	require.NoError(t, err)
	assert.Equal(t, int64(len("RIFF....WAVE")), size)

	call := engine.lastCall()
	assert.Equal(t, ProbeText, call.Text)
	assert.Equal(t, "en", call.Language)
	assert.Equal(t, "Claribel", call.Speaker)
	assert.NoFileExists(t, call.OutputPath)
}

func TestProbe_UncataloguedModel(t *testing.T) {
	engine := &fakeEngine{}
	f := newFixture(t, engine)

	_, err := f.svc.Probe(context.Background(), "tts_models/nl/css10/vits")
	require.NoError(t, err)
	assert.Empty(t, engine.lastCall().Language)
}

func TestProbe_EngineFailure(t *testing.T) {
	engine := &fakeEngine{synthErr: errEngineDown}
	f := newFixture(t, engine)

	_, err := f.svc.Probe(context.Background(), englishModel)
	assert.True(t, apperr.IsKind(err, apperr.KindEngine))
	assert.NoFileExists(t, engine.lastCall().OutputPath)
}
