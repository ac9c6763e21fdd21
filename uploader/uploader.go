// Package uploader talks to the off-chain hosting endpoints: a binary image
// store and a JSON metadata store. Both answer {"url": "..."} on success and
// {"error": "..."} with a non-2xx status on failure; a 2xx response without a
// URL is treated as a failure. Uploads are never retried automatically.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUploadFailed is returned when an upload endpoint reports an error or
// answers without a URL.
var ErrUploadFailed = errors.New("upload failed")

// TokenMetadata is the off-chain metadata document referenced by a token's
// URI. Field names follow the common token metadata JSON shape.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Discord     string `json:"discord,omitempty"`
	Website     string `json:"website,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

type Client struct {
	imageURL    string
	metadataURL string
	httpClient  *http.Client
}

func New(imageURL, metadataURL string, opts ...Option) *Client {
	c := &Client{
		imageURL:    imageURL,
		metadataURL: metadataURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadImage posts a binary asset as multipart form data and returns the
// hosted URL.
func (c *Client) UploadImage(ctx context.Context, filename string, data io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	return c.post(ctx, c.imageURL, writer.FormDataContentType(), &body)
}

// UploadMetadata posts the metadata document as JSON and returns the hosted
// URL, which becomes the token's on-chain URI.
func (c *Client) UploadMetadata(ctx context.Context, meta TokenMetadata) (string, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return c.post(ctx, c.metadataURL, "application/json", bytes.NewReader(payload))
}

func (c *Client) post(ctx context.Context, url, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("%w: malformed response: %v", ErrUploadFailed, err)
	}

	if resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrUploadFailed, parsed.Error)
		}
		return "", fmt.Errorf("%w: unexpected status %d", ErrUploadFailed, resp.StatusCode)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("%w: response did not include a URL", ErrUploadFailed)
	}
	return parsed.URL, nil
}
