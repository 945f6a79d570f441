package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "validation",
			err:      Validation("generate", "text cannot be empty"),
			contains: []string{"[validation:generate]", "text cannot be empty"},
		},
		{
			name:     "compatibility with alternatives",
			err:      Compatibility("build", "language ru not supported", []string{"en", "fr-fr"}, []string{"xtts_v2"}),
			contains: []string{"[compatibility:build]", "supported: en, fr-fr", "alternatives: xtts_v2"},
		},
		{
			name:     "engine with cause",
			err:      Engine("synthesize", errors.New("cuda out of memory")),
			contains: []string{"[engine:synthesize]", "cuda out of memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, substr := range tt.contains {
				assert.Contains(t, tt.err.Error(), substr)
			}
		})
	}
}

func TestWrap_KeepsInnermostKind(t *testing.T) {
	inner := MissingInput("build", "voice sample required")
	wrapped := Wrap(KindEngine, "synthesize", "engine", fmt.Errorf("outer: %w", inner))

	assert.Equal(t, KindMissingInput, wrapped.Kind)
	assert.Nil(t, Wrap(KindEngine, "op", "msg", nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Engine("synthesize", cause)

	require.ErrorIs(t, err, cause)
}

func TestKindOfAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"validation", Validation("op", "bad"), KindValidation, http.StatusBadRequest},
		{"format", UnsupportedFormat("op", []string{".wav"}), KindUnsupportedFormat, http.StatusBadRequest},
		{"compatibility", Compatibility("op", "no", nil, nil), KindCompatibility, http.StatusBadRequest},
		{"missing", MissingInput("op", "no"), KindMissingInput, http.StatusBadRequest},
		{"wrapped missing", fmt.Errorf("ctx: %w", MissingInput("op", "no")), KindMissingInput, http.StatusBadRequest},
		{"engine", Engine("op", errors.New("boom")), KindEngine, http.StatusInternalServerError},
		{"plain", errors.New("plain"), KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.kind))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
