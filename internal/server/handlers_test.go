package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/config"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

type fakePipeline struct {
	events    []domain.ProgressEvent
	text      string
	redacted  string
	err       error
	redactErr error
	block     bool

	gotName string
	gotMIME string
	gotData []byte
}

func (f *fakePipeline) ExtractFile(ctx context.Context, name, mime string, data []byte, onProgress domain.ProgressFunc) (string, error) {
	f.gotName, f.gotMIME, f.gotData = name, mime, data
	if onProgress != nil {
		for _, evt := range f.events {
			onProgress(evt)
		}
	}
	if f.block {
		<-ctx.Done()
		return "", domain.CancelledError(ctx.Err())
	}
	return f.text, f.err
}

func (f *fakePipeline) Redact(_ context.Context, text string) (string, error) {
	if f.redactErr != nil {
		return "", f.redactErr
	}
	return f.redacted, nil
}

func newTestServer(t *testing.T, p Pipeline) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, p, config.DefaultConfig().Server)
}

func newTestServerWith(t *testing.T, p Pipeline, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(p, observability.Nop(), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func uploadRequest(t *testing.T, url, name, mime string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	hdr.Set("Content-Type", mime)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func readStream(t *testing.T, resp *http.Response) []StreamMessage {
	t.Helper()
	var msgs []StreamMessage
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		var m StreamMessage
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		msgs = append(msgs, m)
	}
	require.NoError(t, sc.Err())
	return msgs
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakePipeline{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExtract_JSON(t *testing.T) {
	p := &fakePipeline{text: "hello"}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract", "note.txt", "text/plain", []byte("hello")))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out ExtractResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "hello", out.Text)
	assert.Equal(t, "note.txt", p.gotName)
	assert.Equal(t, "text/plain", p.gotMIME)
	assert.Equal(t, []byte("hello"), p.gotData)
}

func TestExtract_Stream(t *testing.T) {
	p := &fakePipeline{
		text: "page 1\n\npage 2",
		events: []domain.ProgressEvent{
			{Status: domain.StatusInitializing, Fraction: 0},
			{Status: "Recognizing text on page 1 of 2", Fraction: 0.5},
			{Status: domain.StatusComplete, Fraction: 1},
		},
	}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract?stream=true", "scan.pdf", "application/pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, ndjsonContentType, resp.Header.Get("Content-Type"))
	msgs := readStream(t, resp)
	require.Len(t, msgs, 4)
	assert.Equal(t, "progress", msgs[0].Type)
	assert.Equal(t, 0.5, msgs[1].Fraction)
	assert.Equal(t, domain.StatusComplete, msgs[2].Status)
	assert.Equal(t, "result", msgs[3].Type)

	result, ok := msgs[3].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "page 1\n\npage 2", result["text"])
}

func TestExtract_StreamKeepsZeroFraction(t *testing.T) {
	p := &fakePipeline{
		text:   "x",
		events: []domain.ProgressEvent{{Status: domain.StatusInitializing, Fraction: 0}},
	}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract?stream=1", "a.txt", "text/plain", []byte("x")))
	require.NoError(t, err)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	var first map[string]any
	require.NoError(t, json.Unmarshal(sc.Bytes(), &first))
	assert.Equal(t, "progress", first["type"])
	assert.Contains(t, first, "fraction")
	assert.Equal(t, 0.0, first["fraction"])
}

func TestExtract_StreamError(t *testing.T) {
	p := &fakePipeline{
		events: []domain.ProgressEvent{{Status: domain.StatusInitializing}},
		err:    domain.PageError(2, errors.New("render failed")),
	}
	srv := newTestServer(t, p)

	req := uploadRequest(t, srv.URL+"/api/v1/extract", "scan.pdf", "application/pdf", []byte("%PDF-1.7"))
	req.Header.Set("Accept", ndjsonContentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	msgs := readStream(t, resp)
	require.Len(t, msgs, 2)
	last := msgs[1]
	assert.Equal(t, "error", last.Type)
	assert.Equal(t, "page", last.Stage)
	assert.Equal(t, 2, last.Page)
	assert.Contains(t, last.Error, "page 2")
}

func TestExtract_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unsupported", err: domain.UnsupportedKindError(domain.KindUnknown), want: http.StatusUnsupportedMediaType},
		{name: "decode", err: domain.DecodeError(errors.New("bad xref")), want: http.StatusUnprocessableEntity},
		{name: "engine", err: domain.EngineInitError(errors.New("no tessdata")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakePipeline{err: tt.err})
			resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract", "x.bin", "application/octet-stream", []byte{1}))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestExtract_MissingFile(t *testing.T) {
	srv := newTestServer(t, &fakePipeline{})
	resp, err := http.Post(srv.URL+"/api/v1/extract", "text/plain", strings.NewReader("nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcess_JSON(t *testing.T) {
	p := &fakePipeline{text: "Name: Jane", redacted: "Name: [REDACTED]"}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/process", "report.pdf", "application/pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out ProcessResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Name: Jane", out.ExtractedText)
	assert.Equal(t, "Name: [REDACTED]", out.RedactedText)
	assert.Equal(t, "redacted_report.txt", out.DownloadName)
}

func TestProcess_StreamReportsRedactionAfterExtraction(t *testing.T) {
	p := &fakePipeline{
		text:     "Name: Jane",
		redacted: "Name: [REDACTED]",
		events: []domain.ProgressEvent{
			{Status: domain.StatusInitializing, Fraction: 0},
			{Status: domain.StatusComplete, Fraction: 1},
		},
	}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/process?stream=true", "report.txt", "text/plain", []byte("Name: Jane")))
	require.NoError(t, err)
	defer resp.Body.Close()

	msgs := readStream(t, resp)
	require.Len(t, msgs, 4)
	assert.Equal(t, domain.StatusComplete, msgs[1].Status)
	assert.Equal(t, "progress", msgs[2].Type)
	assert.Equal(t, domain.StatusRedacting, msgs[2].Status)
	assert.Equal(t, "result", msgs[3].Type)

	result, ok := msgs[3].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Name: [REDACTED]", result["redactedText"])
}

func TestProcess_RedactionFailure(t *testing.T) {
	p := &fakePipeline{text: "Jane", redactErr: &domain.RedactionError{Err: errors.New("quota exceeded")}}
	srv := newTestServer(t, p)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/process", "a.txt", "text/plain", []byte("Jane")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "quota exceeded", body["error"])
}

func TestRedact(t *testing.T) {
	srv := newTestServer(t, &fakePipeline{redacted: "[REDACTED] called"})

	resp, err := http.Post(srv.URL+"/api/v1/redact", "application/json", strings.NewReader(`{"text":"Jane called"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out RedactResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "[REDACTED] called", out.Text)
}

func TestRedact_BadBody(t *testing.T) {
	srv := newTestServer(t, &fakePipeline{})
	resp, err := http.Post(srv.URL+"/api/v1/redact", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtract_RequestTimeout(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.RequestTimeout = 50 * time.Millisecond
	srv := newTestServerWith(t, &fakePipeline{block: true}, cfg)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract", "scan.pdf", "application/pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestExtract_StreamTimeout(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.RequestTimeout = 50 * time.Millisecond
	srv := newTestServerWith(t, &fakePipeline{block: true}, cfg)

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL+"/api/v1/extract?stream=true", "scan.pdf", "application/pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)
	defer resp.Body.Close()

	msgs := readStream(t, resp)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, "error", last.Type)
	assert.Equal(t, "timeout", last.Stage)
}
