// Package storage manages the on-disk files of the service: generated audio
// in the output directory and transient voice samples in the upload staging
// directory.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600

	tokenLength = 8
)

// EnsureDirs creates each directory if it does not already exist.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// ResolveOutputPath returns outputDir/desiredFilename when nothing exists
// there yet. Otherwise it returns outputDir/stem_xxxxxxxx.ext with a random
// hexadecimal suffix. Only one suffix is tried and no lock is held, so a
// concurrent writer may still race for the same name.
func ResolveOutputPath(outputDir, desiredFilename string) string {
	base := filepath.Join(outputDir, desiredFilename)
	if !exists(base) {
		return base
	}

	ext := filepath.Ext(desiredFilename)
	stem := strings.TrimSuffix(desiredFilename, ext)

	return filepath.Join(outputDir, fmt.Sprintf("%s_%s%s", stem, randomToken(), ext))
}

// randomToken returns eight lowercase hexadecimal characters.
func randomToken() string {
	return uuid.NewString()[:tokenLength]
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
