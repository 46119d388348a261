package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/pkg/pipeline"
)

const ndjsonContentType = "application/x-ndjson"

// Handler serves the extraction and redaction endpoints.
type Handler struct {
	pipeline       Pipeline
	logger         *observability.Logger
	maxUploadBytes int64
}

// NewHandler creates a new handler.
func NewHandler(p Pipeline, logger *observability.Logger, maxUploadBytes int64) *Handler {
	return &Handler{pipeline: p, logger: logger, maxUploadBytes: maxUploadBytes}
}

// RedactRequestDTO is the body of POST /redact.
type RedactRequestDTO struct {
	Text string `json:"text"`
}

// RedactResponseDTO is the response of POST /redact.
type RedactResponseDTO struct {
	Text string `json:"text"`
}

// ExtractResponseDTO is the response of POST /extract.
type ExtractResponseDTO struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

// ProcessResponseDTO is the response of POST /process.
type ProcessResponseDTO struct {
	FileName      string `json:"fileName"`
	DownloadName  string `json:"downloadName"`
	ExtractedText string `json:"extractedText"`
	RedactedText  string `json:"redactedText,omitempty"`
}

// StreamMessage is one NDJSON line of a progress stream.
type StreamMessage struct {
	Type     string  `json:"type"` // progress, result or error
	Status   string  `json:"status,omitempty"`
	Fraction float64 `json:"fraction"`
	Result   any     `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
	Stage    string  `json:"stage,omitempty"`
	Page     int     `json:"page,omitempty"`
}

type upload struct {
	name string
	mime string
	data []byte
}

// Extract handles POST /api/v1/extract.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	run := func(ctx context.Context, onProgress domain.ProgressFunc) (any, error) {
		text, err := h.pipeline.ExtractFile(ctx, up.name, up.mime, up.data, onProgress)
		if err != nil {
			return nil, err
		}
		return ExtractResponseDTO{FileName: up.name, Text: text}, nil
	}

	h.respond(w, r, run)
}

// Process handles POST /api/v1/process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	run := func(ctx context.Context, onProgress domain.ProgressFunc) (any, error) {
		text, err := h.pipeline.ExtractFile(ctx, up.name, up.mime, up.data, onProgress)
		if err != nil {
			return nil, err
		}

		if onProgress != nil {
			onProgress(domain.ProgressEvent{Status: domain.StatusRedacting, Fraction: 1})
		}

		redacted, err := h.pipeline.Redact(ctx, text)
		if err != nil {
			return nil, err
		}
		return ProcessResponseDTO{
			FileName:      up.name,
			DownloadName:  pipeline.OutputName(up.name),
			ExtractedText: text,
			RedactedText:  redacted,
		}, nil
	}

	h.respond(w, r, run)
}

// Redact handles POST /api/v1/redact.
func (h *Handler) Redact(w http.ResponseWriter, r *http.Request) {
	var req RedactRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	text, err := h.pipeline.Redact(r.Context(), req.Text)
	if err != nil {
		h.logger.Error().Err(err).Msg("Redaction failed")
		status, _, _ := classify(err)
		h.writeError(w, status, err.Error(), "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RedactResponseDTO{Text: text})
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing file", err.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read upload", err.Error())
		return nil, false
	}

	return &upload{
		name: filepath.Base(header.Filename),
		mime: header.Header.Get("Content-Type"),
		data: data,
	}, true
}

type runFunc func(ctx context.Context, onProgress domain.ProgressFunc) (any, error)

// respond runs fn and writes a single JSON result, or an NDJSON progress
// stream when the client asks for one.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, fn runFunc) {
	if wantsStream(r) {
		h.stream(w, r, fn)
		return
	}

	result, err := fn(r.Context(), nil)
	if err != nil {
		status, _, _ := classify(err)
		h.logger.Error().Err(err).Int("status", status).Msg("Request failed")
		h.writeError(w, status, err.Error(), "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, fn runFunc) {
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", ndjsonContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	messages := make(chan StreamMessage, 16)
	g, ctx := errgroup.WithContext(r.Context())

	// a buffered slot is used even after ctx ends so the final error reaches the client
	send := func(msg StreamMessage) {
		select {
		case messages <- msg:
			return
		default:
		}
		select {
		case messages <- msg:
		case <-ctx.Done():
		}
	}

	g.Go(func() error {
		defer close(messages)

		result, err := fn(ctx, func(evt domain.ProgressEvent) {
			send(StreamMessage{Type: "progress", Status: evt.Status, Fraction: evt.Fraction})
		})
		if err != nil {
			h.logger.Error().Err(err).Msg("Streamed request failed")
			send(errorMessage(err))
			return nil
		}
		send(StreamMessage{Type: "result", Fraction: 1, Result: result})
		return nil
	})

	g.Go(func() error {
		enc := json.NewEncoder(w)
		for msg := range messages {
			if err := enc.Encode(msg); err != nil {
				return fmt.Errorf("write stream: %w", err)
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Warn().Err(err).Msg("Progress stream aborted")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}

func wantsStream(r *http.Request) bool {
	if v := r.URL.Query().Get("stream"); v == "1" || v == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), ndjsonContentType)
}

func errorMessage(err error) StreamMessage {
	_, stage, page := classify(err)
	return StreamMessage{Type: "error", Error: err.Error(), Stage: stage, Page: page}
}

// classify maps a pipeline error to an HTTP status, a stage name and the
// failed page (0 when not page-specific).
func classify(err error) (status int, stage string, page int) {
	if errors.Is(err, context.DeadlineExceeded) {
		stage = "timeout"
		var ee *domain.ExtractionError
		if errors.As(err, &ee) {
			page = ee.PageIndex
		}
		return http.StatusGatewayTimeout, stage, page
	}

	var re *domain.RedactionError
	if errors.As(err, &re) {
		return http.StatusBadGateway, "redaction", 0
	}

	var ee *domain.ExtractionError
	if !errors.As(err, &ee) {
		return http.StatusInternalServerError, "internal", 0
	}

	switch ee.Type {
	case domain.ErrorTypeUnsupportedKind:
		status = http.StatusUnsupportedMediaType
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeDecode, domain.ErrorTypePage:
		status = http.StatusUnprocessableEntity
	case domain.ErrorTypeCancelled:
		status = http.StatusRequestTimeout
	default:
		status = http.StatusInternalServerError
	}
	return status, string(ee.Type), ee.PageIndex
}
