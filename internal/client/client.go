// Package client issues extraction requests against the remote service and
// normalizes transport failures into a uniform error value. It performs no
// extraction itself and no caller-initiated cancellation beyond the request
// context; serializing concurrent submissions is the caller's concern.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.uber.org/zap"

	"marklens/internal/config"
	"marklens/internal/domain"
)

const (
	extractPath = "/extract"
	batchPath   = "/extract/batch"
)

// Client defines the extraction request contract.
type Client interface {
	SubmitSingle(ctx context.Context, f domain.File) (*domain.ExtractionResult, error)
	SubmitBatch(ctx context.Context, files []domain.File) (domain.BatchResult, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a Client against the configured extraction service endpoint.
func New(cfg *config.APIConfig, log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		log:     log,
	}
}

// singleEnvelope is the success body of POST /extract.
type singleEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// batchEnvelope is the success body of POST /extract/batch.
type batchEnvelope struct {
	Results json.RawMessage `json:"results"`
}

// errorEnvelope is the structured failure body; detail may be absent.
type errorEnvelope struct {
	Detail string `json:"detail"`
}

func (c *httpClient) SubmitSingle(ctx context.Context, f domain.File) (*domain.ExtractionResult, error) {
	c.log.Info("client.SubmitSingle: posting extraction request",
		zap.String("file", f.Name), zap.Int64("size", f.Size))

	body, err := c.post(ctx, extractPath, "file", []domain.File{f})
	if err != nil {
		return nil, err
	}

	var env singleEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}

	result := &domain.ExtractionResult{}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("decoding extraction data: %w", err)
		}
	}
	return result, nil
}

func (c *httpClient) SubmitBatch(ctx context.Context, files []domain.File) (domain.BatchResult, error) {
	c.log.Info("client.SubmitBatch: posting batch extraction request",
		zap.Int("files", len(files)))

	body, err := c.post(ctx, batchPath, "files", files)
	if err != nil {
		return nil, err
	}

	var env batchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding batch response: %w", err)
	}

	var results domain.BatchResult
	if len(env.Results) > 0 && !bytes.Equal(env.Results, []byte("null")) {
		if err := json.Unmarshal(env.Results, &results); err != nil {
			return nil, fmt.Errorf("decoding batch results: %w", err)
		}
	}
	if results == nil {
		// A null or absent results field is an empty batch, not a missing
		// result; downstream renders it as a no-data notice.
		results = domain.BatchResult{}
	}
	return results, nil
}

// post sends one multipart request and returns the success body. Non-2xx
// statuses and network failures come back as *domain.TransportError with the
// best available message: the server's detail field when the error body
// parses, else a status-code message.
func (c *httpClient) post(ctx context.Context, path, fieldName string, files []domain.File) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreatePart(fileHeader(fieldName, f))
		if err != nil {
			return nil, fmt.Errorf("creating form part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("writing form part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("client.post: request failed", zap.String("path", path), zap.Error(err))
		return nil, domain.NewTransportError(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.Unmarshal(body, &env)
		c.log.Warn("client.post: extraction service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", env.Detail))
		return nil, domain.NewTransportError(resp.StatusCode, env.Detail, nil)
	}

	return body, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// fileHeader builds a multipart part header carrying the file's declared
// content type, which CreateFormFile would otherwise force to octet-stream.
func fileHeader(fieldName string, f domain.File) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}
