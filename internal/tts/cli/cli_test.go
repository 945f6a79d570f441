package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nadzzz/ttsgen/internal/config"
	"github.com/nadzzz/ttsgen/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeTTS = `#!/bin/sh
printf '%s\n' "$@" > "$(dirname "$0")/args.txt"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --out_path) out="$2"; shift ;;
    --list_speaker_idxs)
      echo " [!] Loading model from cache"
      echo " > Available speaker ids: (Set --speaker_idx flag to one of these values to use the multi-speaker model."
      echo "{'Claribel Dervla': 0, 'Daisy Studious': 1}"
      exit 0 ;;
    --fail) exit 3 ;;
  esac
  shift
done
if [ "$1" = "" ] && [ -n "$out" ]; then
  echo "$TTS_HOME|$COQUI_TOS_AGREED" > "$out"
fi
`

func writeFake(t *testing.T) (binary string, dir string) {
	t.Helper()

	dir = t.TempDir()
	binary = filepath.Join(dir, "tts")
	require.NoError(t, os.WriteFile(binary, []byte(fakeTTS), 0o700))
	return binary, dir
}

func readArgs(t *testing.T, dir string) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestSynthesize_PassesParametersAndEnvironment(t *testing.T) {
	binary, dir := writeFake(t)
	cache := filepath.Join(dir, "models")

	s := New(config.CLIConfig{Binary: binary}, tts.Options{ModelCacheDir: cache, AcceptLicense: true, GPU: true})
	out := filepath.Join(dir, "output", "hello.wav")

	err := s.Synthesize(context.Background(), "tts_models/multilingual/multi-dataset/xtts_v2", tts.Params{
		Text:       "Hello",
		OutputPath: out,
		Speaker:    "Claribel Dervla",
		Language:   "en",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--model_name", "tts_models/multilingual/multi-dataset/xtts_v2",
		"--text", "Hello",
		"--out_path", out,
		"--speaker_idx", "Claribel Dervla",
		"--language_idx", "en",
		"--use_cuda", "true",
	}, readArgs(t, dir))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, cache+"|1\n", string(content))
}

func TestSynthesize_VoiceSample(t *testing.T) {
	binary, dir := writeFake(t)
	s := New(config.CLIConfig{Binary: binary}, tts.Options{})

	err := s.Synthesize(context.Background(), "m", tts.Params{
		Text:              "Hi",
		OutputPath:        filepath.Join(dir, "o.wav"),
		SpeakerSamplePath: "/tmp/speaker_1234abcd.wav",
	})
	require.NoError(t, err)

	args := readArgs(t, dir)
	assert.Contains(t, args, "--speaker_wav")
	assert.Contains(t, args, "/tmp/speaker_1234abcd.wav")
	assert.NotContains(t, args, "--speaker_idx")
	assert.NotContains(t, args, "--use_cuda")
}

func TestSynthesize_CommandFails(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "tts")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\necho 'RuntimeError: boom' >&2\nexit 1\n"), 0o700))

	s := New(config.CLIConfig{Binary: binary}, tts.Options{})
	err := s.Synthesize(context.Background(), "m", tts.Params{Text: "Hi", OutputPath: filepath.Join(dir, "o.wav")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RuntimeError: boom")
}

func TestSynthesize_NoOutput(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "tts")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o700))

	s := New(config.CLIConfig{Binary: binary}, tts.Options{})
	err := s.Synthesize(context.Background(), "m", tts.Params{Text: "Hi", OutputPath: filepath.Join(dir, "o.wav")})
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestBuiltInSpeakers(t *testing.T) {
	binary, _ := writeFake(t)
	s := New(config.CLIConfig{Binary: binary}, tts.Options{})

	list, err := s.BuiltInSpeakers(context.Background(), "tts_models/multilingual/multi-dataset/xtts_v2")
	require.NoError(t, err)
	assert.True(t, list.Available)
	assert.Equal(t, []string{"Claribel Dervla", "Daisy Studious"}, list.Names)
}

func TestParseSpeakers(t *testing.T) {
	const marker = " > Available speaker ids: (Set --speaker_idx flag to one of these values to use the multi-speaker model.\n"

	tests := []struct {
		name   string
		output string
		want   tts.SpeakerList
	}{
		{
			name:   "name to id dict",
			output: marker + "{'Claribel Dervla': 0, 'Daisy Studious': 1}\n",
			want:   tts.SpeakerList{Names: []string{"Claribel Dervla", "Daisy Studious"}, Available: true},
		},
		{
			name:   "dict keys",
			output: marker + "dict_keys(['p225', 'p226'])\n",
			want:   tts.SpeakerList{Names: []string{"p225", "p226"}, Available: true},
		},
		{
			name:   "list literal after log lines",
			output: " > tts_models/en/vctk/vits is already downloaded.\n" + marker + " [!] deprecated option\n['p225', \"o'neil\"]\n",
			want:   tts.SpeakerList{Names: []string{"p225", "o'neil"}, Available: true},
		},
		{
			name:   "empty dict",
			output: marker + "{}\n",
			want:   tts.SpeakerList{Available: true},
		},
		{
			name:   "log line with brackets and no marker",
			output: " [!] Model has no speaker manager.\n > Done.\n",
			want:   tts.SpeakerList{},
		},
		{
			name:   "marker without listing",
			output: marker + " > Done.\n",
			want:   tts.SpeakerList{},
		},
		{
			name:   "no listing",
			output: " > Model is not multi-speaker.",
			want:   tts.SpeakerList{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSpeakers(tt.output))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	binary, _ := writeFake(t)

	require.NoError(t, New(config.CLIConfig{Binary: binary}, tts.Options{}).HealthCheck(context.Background()))
	require.Error(t, New(config.CLIConfig{Binary: filepath.Join(t.TempDir(), "missing")}, tts.Options{}).HealthCheck(context.Background()))
}
