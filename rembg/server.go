package rembg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// serverRequestTimeout bounds a single inference round trip; per-image
// timeouts configured by the caller arrive through the context and may be
// shorter.
const serverRequestTimeout = 5 * time.Minute

// ServerRemover sends images to a running rembg server (`rembg s`). The
// server keeps the network in memory, so model load cost is paid once per
// run instead of once per image.
type ServerRemover struct {
	baseURL string
	client  *http.Client
}

// NewServerRemover creates a remover talking to the rembg server at baseURL
func NewServerRemover(baseURL string) *ServerRemover {
	return &ServerRemover{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: serverRequestTimeout},
	}
}

// Remove uploads the image as a multipart form and returns the response
// bytes, which the server encodes as PNG with an alpha channel.
func (r *ServerRemover) Remove(ctx context.Context, input []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(input); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/remove", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rembg server request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rembg server returned status %d: %s", resp.StatusCode, firstLine(string(detail)))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read server response: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("rembg server returned no data")
	}

	return out, nil
}
