package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/wordtally/internal/model"
)

const maxErrorBody = 512

// HTTP posts records as JSON to a fixed URL.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP returns an HTTP sink. A nil client gets one with the given timeout.
func NewHTTP(url string, client *http.Client, timeout time.Duration) (*HTTP, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("http sink requires a url")
	}
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{url: url, client: client}, nil
}

// SaveRecord implements session.Sink. Any non-2xx response is an error.
func (h *HTTP) SaveRecord(ctx context.Context, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("record endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
