package http

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/nadzzz/ttsgen/internal/apperr"
)

// engineFailureMessage is shown instead of engine internals.
const engineFailureMessage = "speech generation failed, see server logs for details"

// GenerateResponse is returned by POST /generate on success.
type GenerateResponse struct {
	Success  bool   `json:"success" example:"true"`
	Message  string `json:"message" example:"audio generated: out.wav"`
	Filename string `json:"filename" example:"out.wav"`
}

// ErrorResponse is the envelope of every failed API call.
type ErrorResponse struct {
	Success            bool     `json:"success" example:"false"`
	Message            string   `json:"message"`
	SupportedLanguages []string `json:"supported_languages,omitempty"`
	Alternatives       []string `json:"alternatives,omitempty"`
}

// ModelsResponse lists the catalog in display order.
type ModelsResponse struct {
	Categories []string                  `json:"categories"`
	Models     map[string][]ModelSummary `json:"models"`
}

// ModelSummary is one catalog entry as rendered by the API.
type ModelSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Language     string `json:"language"`
	Gender       string `json:"gender"`
	Quality      string `json:"quality"`
	VoiceCloning bool   `json:"voice_cloning"`
	Speakers     bool   `json:"speakers"`
	Family       string `json:"family"`
}

// SpeakersResponse reports the built-in speakers of a model.
type SpeakersResponse struct {
	ModelName   string   `json:"model_name"`
	Speakers    []string `json:"speakers"`
	HasSpeakers bool     `json:"has_speakers"`
	Error       string   `json:"error,omitempty"`
}

// TestResponse reports the outcome of a model probe.
type TestResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FileSize int64  `json:"file_size,omitempty"`
}

// respondError writes err using the status its kind maps to. Engine and
// unclassified failures are logged in full and answered generically.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	resp := ErrorResponse{Success: false}

	var typed *apperr.Error
	if apperr.IsClientError(err) && errors.As(err, &typed) {
		resp.Message = typed.Message
		if typed.Kind == apperr.KindCompatibility {
			resp.SupportedLanguages = typed.Supported
			resp.Alternatives = typed.Alternatives
		}
		slog.Info("request rejected", "path", c.Request.URL.Path, "kind", typed.Kind, "reason", typed.Message)
	} else {
		resp.Message = engineFailureMessage
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, resp)
}
