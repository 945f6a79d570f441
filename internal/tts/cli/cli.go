// Package cli implements the TTS Synthesizer by running the Coqui `tts`
// command-line tool once per request.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nadzzz/ttsgen/internal/config"
	"github.com/nadzzz/ttsgen/internal/tts"
)

const (
	defaultBinary  = "tts"
	dirPermissions = 0o750
)

// ErrNoOutput is returned when the command exits cleanly without writing audio.
var ErrNoOutput = errors.New("tts command produced no audio file")

// Synthesizer implements tts.Synthesizer by executing the tts binary.
type Synthesizer struct {
	binary string
	opts   tts.Options
}

// New creates a command-line synthesizer from config.
func New(cfg config.CLIConfig, opts tts.Options) *Synthesizer {
	binary := cfg.Binary
	if binary == "" {
		binary = defaultBinary
	}
	return &Synthesizer{binary: binary, opts: opts}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "cli" }

// Synthesize runs the tts command for one request.
func (s *Synthesizer) Synthesize(ctx context.Context, modelID string, params tts.Params) error {
	if err := os.MkdirAll(filepath.Dir(params.OutputPath), dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	args := []string{
		"--model_name", modelID,
		"--text", params.Text,
		"--out_path", params.OutputPath,
	}
	if params.Speaker != "" {
		args = append(args, "--speaker_idx", params.Speaker)
	}
	if params.Language != "" {
		args = append(args, "--language_idx", params.Language)
	}
	if params.SpeakerSamplePath != "" {
		args = append(args, "--speaker_wav", params.SpeakerSamplePath)
	}
	if s.opts.GPU {
		args = append(args, "--use_cuda", "true")
	}

	slog.Debug("tts command", "binary", s.binary, "model", modelID, "speaker", params.Speaker, "language", params.Language)

	output, err := s.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("tts command failed: %w - output: %s", err, tail(output))
	}

	info, statErr := os.Stat(params.OutputPath)
	if statErr != nil || info.Size() == 0 {
		return ErrNoOutput
	}
	return nil
}

// BuiltInSpeakers runs `tts --list_speaker_idxs` and parses the listing.
func (s *Synthesizer) BuiltInSpeakers(ctx context.Context, modelID string) (tts.SpeakerList, error) {
	output, err := s.run(ctx, "--model_name", modelID, "--list_speaker_idxs")
	if err != nil {
		return tts.SpeakerList{}, fmt.Errorf("listing speakers failed: %w - output: %s", err, tail(output))
	}
	return parseSpeakers(output), nil
}

// HealthCheck verifies the binary can be found.
func (s *Synthesizer) HealthCheck(_ context.Context) error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("locating %s: %w", s.binary, err)
	}
	return nil
}

// Close is a no-op; each call runs its own process.
func (s *Synthesizer) Close() error { return nil }

func (s *Synthesizer) run(ctx context.Context, args ...string) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the binary comes from configuration, arguments are passed without a shell
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Env = append(os.Environ(), s.opts.Environment()...)

	out, err := cmd.CombinedOutput()
	return string(out), err
}

// speakerMarker precedes the speaker listing printed by --list_speaker_idxs.
const speakerMarker = "Available speaker ids"

// parseSpeakers extracts names from the listing that follows the
// speakerMarker line. The tool prints a Python literal there: a dict of
// name to id, a list, or dict_keys([...]). Output without the marker means
// the model carries no speaker manager.
func parseSpeakers(output string) tts.SpeakerList {
	idx := strings.Index(output, speakerMarker)
	if idx < 0 {
		return tts.SpeakerList{}
	}
	rest := output[idx+len(speakerMarker):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return tts.SpeakerList{}
	}

	for _, line := range strings.Split(rest[nl+1:], "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "dict_keys(")
		if !isLiteral(line) {
			continue
		}
		return tts.SpeakerList{Names: quotedItems(line), Available: true}
	}
	return tts.SpeakerList{}
}

// isLiteral reports whether line opens a Python dict or list of strings,
// as opposed to log lines such as " [!] warning".
func isLiteral(line string) bool {
	if len(line) < 2 || (line[0] != '{' && line[0] != '[') {
		return false
	}
	closer := byte(']')
	if line[0] == '{' {
		closer = '}'
	}
	next := strings.TrimSpace(line[1:])
	return next != "" && (next[0] == '\'' || next[0] == '"' || next[0] == closer)
}

// quotedItems returns the quoted strings of a list literal, or the quoted
// keys of a dict literal, stopping at the closing bracket.
func quotedItems(literal string) []string {
	dict := literal[0] == '{'
	closer := byte(']')
	if dict {
		closer = '}'
	}

	var names []string
	for i := 1; i < len(literal); i++ {
		c := literal[i]
		if c == closer {
			break
		}
		if c != '\'' && c != '"' {
			continue
		}

		var b strings.Builder
		j := i + 1
		for ; j < len(literal) && literal[j] != c; j++ {
			if literal[j] == '\\' && j+1 < len(literal) {
				j++
			}
			b.WriteByte(literal[j])
		}
		i = j

		if dict {
			k := j + 1
			for k < len(literal) && literal[k] == ' ' {
				k++
			}
			if k >= len(literal) || literal[k] != ':' {
				continue
			}
		}
		names = append(names, b.String())
	}
	return names
}

func tail(output string) string {
	const limit = 512
	output = strings.TrimSpace(output)
	if len(output) > limit {
		return "..." + output[len(output)-limit:]
	}
	return output
}
