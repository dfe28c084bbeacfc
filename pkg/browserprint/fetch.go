package browserprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"zebraprint/pkg/metrics"
)

const (
	contentTypeText = "text/plain;charset=UTF-8"
	contentTypeJSON = "application/json"
)

type request struct {
	method      string
	contentType string
	body        []byte
}

// fetchWithRetry performs the call up to retries times and returns the body
// of the first successful response. Failures before the last attempt are
// only logged; the last one is returned as a *RetryError.
func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, req request, retries int) ([]byte, error) {
	if retries < 1 {
		retries = 1
	}

	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 && c.retryDelay > 0 {
			if err := sleep(ctx, c.retryDelay); err != nil {
				lastErr = err
				break
			}
		}

		attempts = attempt
		body, err := c.do(ctx, endpoint, req)
		if err == nil {
			metrics.BridgeAttempts.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
			return body, nil
		}
		metrics.BridgeAttempts.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < retries {
			c.logger.Debugf("Attempt %d/%d on %s failed: %v", attempt, retries, endpoint, err)
		}
	}

	metrics.RetriesExhausted.WithLabelValues(endpoint).Inc()
	return nil, &RetryError{Endpoint: endpoint, Attempts: attempts, Err: lastErr}
}

func (c *Client) do(ctx context.Context, endpoint string, req request) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: endpoint})

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", req.contentType)
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Drop the method and URL net/http prepends; callers show the cause as is.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, urlErr.Err
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.fetchWithRetry(ctx, endpoint, request{
		method:      http.MethodGet,
		contentType: contentTypeText,
	}, c.retries)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.fetchWithRetry(ctx, endpoint, request{
		method:      http.MethodPost,
		contentType: contentTypeJSON,
		body:        body,
	}, c.retries)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
