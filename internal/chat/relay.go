package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/comigor/jokebot-go/internal/api"
)

const maxResponseBytes = 1 << 20

// ErrMissingText means the relay answered 2xx without a text field.
var ErrMissingText = errors.New("chat: relay response has no text")

// StatusError is a non-2xx relay response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat: relay returned %d", e.Status)
	}
	return fmt.Sprintf("chat: relay returned %d: %s", e.Status, e.Message)
}

// Relay sends one Turn Request and returns the generated text.
type Relay interface {
	Send(ctx context.Context, req api.ChatRequest) (string, error)
}

// HTTPRelay posts Turn Requests to a relay over HTTP.
type HTTPRelay struct {
	url    string
	client *http.Client
}

// NewHTTPRelay creates a client for the relay at baseURL.
func NewHTTPRelay(baseURL string, timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{
		url:    strings.TrimRight(baseURL, "/") + api.ChatPath,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPRelay) Send(ctx context.Context, req api.ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat: relay request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("chat: read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		_ = json.Unmarshal(data, &e)
		return "", &StatusError{Status: resp.StatusCode, Message: e.Error}
	}

	var out api.ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("chat: decode relay response: %w", err)
	}
	if out.Text == nil {
		return "", ErrMissingText
	}
	return *out.Text, nil
}
