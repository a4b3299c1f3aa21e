package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"cons/internal/config"
	"cons/internal/logging"
)

// HTTPClient talks to a local LLM host over a simple JSON completion
// endpoint, retrying up to three times with exponential backoff (1s,
// 2s, 4s) on transient errors only (network errors, timeouts and HTTP
// 5xx), never on 4xx.
type HTTPClient struct {
	host       string
	httpClient *http.Client
}

// NewHTTPClient builds a client against host (e.g. from
// config.Endpoint().Host), wiring the connect timeout into the
// transport dialer and the read timeout into the overall client
// timeout, both read fresh from config at construction time.
func NewHTTPClient(host string) *HTTPClient {
	t := config.Timeouts()
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: t.ConnectTimeout}).DialContext,
	}
	return &HTTPClient{
		host: host,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   t.ReadTimeout,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Generate implements Client. It retries transient failures with
// exponential backoff (1s, 2s, 4s), up to three retries after the
// first attempt.
func (c *HTTPClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	log := logging.Get(logging.CategoryLLM)
	t := config.Timeouts()

	var lastErr error
	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := t.RetryBackoffBase << uint(attempt-1)
			log.Debug("retrying LLM call attempt=%d after %s: %v", attempt, backoff, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.doOnce(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isTransient(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", &SerializationError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &SerializationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Phase: "read"}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", &TimeoutError{Phase: "connect"}
		}
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{Status: resp.StatusCode}
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &SerializationError{Err: err}
	}
	if out.Error != "" {
		return "", &APIError{Message: out.Error}
	}

	return out.Text, nil
}
