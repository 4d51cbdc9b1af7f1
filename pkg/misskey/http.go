package misskey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type httpClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

func newHTTPClient(cfg *clientConfig) *httpClient {
	return &httpClient{
		client:     cfg.httpClient,
		baseURL:    cfg.baseURL,
		apiKey:     cfg.apiKey,
		maxRetries: cfg.maxRetries,
		backoff:    cfg.backoff,
		logger:     cfg.logger,
	}
}

// request posts params to endpoint and decodes the response into result.
// The access token is added to params.
func (h *httpClient) request(ctx context.Context, endpoint string, params map[string]any, result any) error {
	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	if h.apiKey != "" {
		body["i"] = h.apiKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("misskey: marshal %s request: %w", endpoint, err)
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			wait := h.backoff << (attempt - 1)
			h.logger.Debug("misskey: retrying", "endpoint", endpoint, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := h.do(ctx, endpoint, data, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return err
		}
		if apiErr, ok := AsError(err); ok && !apiErr.Retryable() {
			return err
		}
	}
	return lastErr
}

func (h *httpClient) do(ctx context.Context, endpoint string, data []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("misskey: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mkmarkov/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("misskey: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("misskey: read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(body, resp.StatusCode)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("misskey: decode %s response: %w", endpoint, err)
	}
	return nil
}

func parseError(body []byte, status int) error {
	var wrapped struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != nil {
		wrapped.Error.HTTPStatus = status
		return wrapped.Error
	}
	return &Error{Message: string(bytes.TrimSpace(body)), HTTPStatus: status}
}
