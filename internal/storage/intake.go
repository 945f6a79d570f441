package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/nadzzz/ttsgen/internal/apperr"
)

// AllowedSampleExtensions are the voice sample formats accepted for cloning.
var AllowedSampleExtensions = []string{".wav", ".mp3", ".flac", ".m4a"}

// ErrSampleTooLarge is returned when an upload exceeds the intake limit.
var ErrSampleTooLarge = errors.New("voice sample exceeds size limit")

// Intake stages uploaded voice samples under a directory.
type Intake struct {
	dir      string
	maxBytes int64
}

// NewIntake returns an Intake writing into dir. maxBytes <= 0 disables the
// size limit.
func NewIntake(dir string, maxBytes int64) *Intake {
	return &Intake{dir: dir, maxBytes: maxBytes}
}

// Sample is a staged voice sample. Release must be called once the owning
// synthesis call has returned.
type Sample struct {
	path string
	once sync.Once
}

// Path returns the staged file location. A nil Sample has an empty path.
func (s *Sample) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Release deletes the staged file. It is safe to call on a nil Sample and
// more than once. A file that is already gone is logged and ignored.
func (s *Sample) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		err := os.Remove(s.path)
		switch {
		case err == nil:
			slog.Debug("voice sample removed", "path", s.path)
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("voice sample already gone", "path", s.path)
		default:
			slog.Warn("failed to remove voice sample", "path", s.path, "error", err)
		}
	})
}

// Accept validates filename's extension and copies r into a fresh file in
// the staging directory. With an empty filename it returns (nil, nil).
// A disallowed extension fails before anything touches the filesystem.
func (in *Intake) Accept(filename string, r io.Reader) (*Sample, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(AllowedSampleExtensions, ext) {
		return nil, apperr.UnsupportedFormat("accept sample", AllowedSampleExtensions)
	}

	if err := EnsureDirs(in.dir); err != nil {
		return nil, err
	}

	path := filepath.Join(in.dir, fmt.Sprintf("speaker_%s%s", randomToken(), ext))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("creating voice sample: %w", err)
	}

	src := r
	if in.maxBytes > 0 {
		src = io.LimitReader(r, in.maxBytes+1)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing voice sample: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("closing voice sample: %w", closeErr)
	case in.maxBytes > 0 && n > in.maxBytes:
		_ = os.Remove(path)
		return nil, apperr.Wrap(apperr.KindValidation, "accept sample",
			fmt.Sprintf("voice sample larger than %d bytes", in.maxBytes), ErrSampleTooLarge)
	}

	slog.Debug("voice sample staged", "path", path, "bytes", n)
	return &Sample{path: path}, nil
}

// With stages a sample, runs fn with its path and releases the sample on
// every exit path. An empty filename runs fn with an empty path.
func (in *Intake) With(filename string, r io.Reader, fn func(path string) error) error {
	sample, err := in.Accept(filename, r)
	if err != nil {
		return err
	}
	defer sample.Release()

	return fn(sample.Path())
}
