package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nadzzz/ttsgen/internal/apperr"
	"github.com/nadzzz/ttsgen/internal/artifact"
	"github.com/nadzzz/ttsgen/internal/catalog"
	"github.com/nadzzz/ttsgen/internal/synth"
)

// handleIndex renders the generation form.
func (t *Transport) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Categories": t.svc.Catalog().Categories(),
	})
}

// handleGenerate processes a POST /generate request.
//
// @Summary     Generate speech
// @Description Synthesizes text with a catalog model and stores the result under /output.
// @Description An optional voice sample (wav, mp3, flac, m4a) enables voice cloning on
// @Description models that support it. The sample is deleted once synthesis finishes.
// @Tags        synthesis
// @Accept      multipart/form-data
// @Produce     json
// @Param       text            formData  string  true   "Text to speak"
// @Param       modelId         formData  string  true   "Catalog model id"
// @Param       outputFilename  formData  string  true   "Output file name, .wav is appended when missing"
// @Param       speakerFile     formData  file    false  "Voice sample for cloning"
// @Param       language        formData  string  false  "Language code for multilingual models"
// @Param       speaker         formData  string  false  "Built-in speaker name"
// @Success     200  {object}  GenerateResponse
// @Failure     400  {object}  ErrorResponse  "Invalid input, unsupported sample format, incompatible language or missing voice"
// @Failure     500  {object}  ErrorResponse  "Synthesis engine failure"
// @Router      /generate [post]
func (t *Transport) handleGenerate(c *gin.Context) {
	const op = "http.generate"

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperr.Validation(op, "request larger than %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, apperr.Validation(op, "invalid form: %v", err))
		return
	}

	req := synth.GenerateRequest{
		Text:           c.PostForm("text"),
		ModelID:        strings.TrimSpace(c.PostForm("modelId")),
		OutputFilename: c.PostForm("outputFilename"),
		Language:       c.PostForm("language"),
		Speaker:        c.PostForm("speaker"),
	}

	header, err := c.FormFile("speakerFile")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		respondError(c, apperr.Validation(op, "invalid voice sample: %v", err))
		return
	default:
		file, err := header.Open()
		if err != nil {
			respondError(c, fmt.Errorf("opening voice sample: %w", err))
			return
		}
		defer file.Close()

		req.SampleName = header.Filename
		req.Sample = file
	}

	res, err := t.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Success:  true,
		Message:  "audio generated: " + res.Filename,
		Filename: res.Filename,
	})
}

// handleModels lists the catalog.
//
// @Summary     List models
// @Description Returns category names in display order and the models of each category.
// @Tags        catalog
// @Produce     json
// @Success     200  {object}  ModelsResponse
// @Router      /models [get]
func (t *Transport) handleModels(c *gin.Context) {
	cats := t.svc.Catalog().Categories()

	resp := ModelsResponse{
		Categories: make([]string, 0, len(cats)),
		Models:     make(map[string][]ModelSummary, len(cats)),
	}
	for _, cat := range cats {
		resp.Categories = append(resp.Categories, cat.Name)
		models := make([]ModelSummary, 0, len(cat.Models))
		for _, m := range cat.Models {
			models = append(models, summarize(m))
		}
		resp.Models[cat.Name] = models
	}

	c.JSON(http.StatusOK, resp)
}

// handleSpeakers reports the built-in speakers of any engine model.
//
// @Summary     List built-in speakers
// @Description Loads the model in the engine and lists the voices it ships with.
// @Description Failures are reported in the body with has_speakers=false.
// @Tags        catalog
// @Produce     json
// @Param       model  path  string  true  "Model id, slashes included"
// @Success     200  {object}  SpeakersResponse
// @Router      /speakers/{model} [get]
func (t *Transport) handleSpeakers(c *gin.Context) {
	modelID := modelParam(c)
	resp := SpeakersResponse{ModelName: modelID, Speakers: []string{}}

	list, err := t.svc.Speakers(c.Request.Context(), modelID)
	if err != nil {
		resp.Error = softError(c, err)
		c.JSON(http.StatusOK, resp)
		return
	}

	if list.Available && len(list.Names) > 0 {
		resp.Speakers = list.Names
		resp.HasSpeakers = true
	}
	c.JSON(http.StatusOK, resp)
}

// handleTest runs a short synthesis with a model.
//
// @Summary     Probe a model
// @Description Synthesizes a fixed English sentence into a temporary file and reports its size.
// @Description Failures are reported in the body with success=false.
// @Tags        synthesis
// @Produce     json
// @Param       model  path  string  true  "Model id, slashes included"
// @Success     200  {object}  TestResponse
// @Router      /test/{model} [get]
func (t *Transport) handleTest(c *gin.Context) {
	modelID := modelParam(c)

	size, err := t.svc.Probe(c.Request.Context(), modelID)
	if err != nil {
		c.JSON(http.StatusOK, TestResponse{Success: false, Message: "error testing model: " + softError(c, err)})
		return
	}
	if size == 0 {
		c.JSON(http.StatusOK, TestResponse{Success: false, Message: "model loaded but no audio generated"})
		return
	}

	c.JSON(http.StatusOK, TestResponse{
		Success:  true,
		Message:  fmt.Sprintf("model %s works correctly", modelID),
		FileSize: size,
	})
}

// handleArtifact serves a generated file from the artifact mirror, for files
// produced by another replica or pruned from the local output directory.
//
// @Summary     Fetch a mirrored file
// @Description Returns a generated audio file from the NATS object store mirror.
// @Tags        synthesis
// @Produce     audio/wav
// @Param       name  path  string  true  "Generated file name"
// @Success     200  {file}    file
// @Failure     400  {object}  ErrorResponse  "Invalid file name"
// @Failure     404  {object}  ErrorResponse  "Not mirrored"
// @Router      /artifacts/{name} [get]
func (t *Transport) handleArtifact(c *gin.Context) {
	const op = "http.artifact"

	name := c.Param("name")
	if name != filepath.Base(name) || name == "." || name == ".." {
		respondError(c, apperr.Validation(op, "invalid file name %q", name))
		return
	}

	data, err := t.opts.Artifacts.Download(c.Request.Context(), name)
	if errors.Is(err, artifact.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Message: "file not found: " + name})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/wav", data)
}

// softError describes err for the diagnostic endpoints, which always answer
// 200 and report failures in the body.
func softError(c *gin.Context, err error) string {
	var typed *apperr.Error
	if apperr.IsClientError(err) && errors.As(err, &typed) {
		return typed.Message
	}
	slog.Warn("diagnostic request failed", "path", c.Request.URL.Path, "error", err)
	if errors.As(err, &typed) && typed.Cause != nil {
		return typed.Cause.Error()
	}
	return err.Error()
}

func modelParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("model"), "/")
}

func summarize(m catalog.Model) ModelSummary {
	return ModelSummary{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Language:     m.Language,
		Gender:       string(m.Gender),
		Quality:      string(m.Quality),
		VoiceCloning: m.VoiceCloning,
		Speakers:     m.MultiSpeaker,
		Family:       string(m.Family),
	}
}
