package browserprint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zebraprint/pkg/metrics"
)

type memStorage map[string]string

func (m memStorage) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memStorage) Set(key, value string) error {
	m[key] = value
	return nil
}

// roundTripFunc fails or answers requests without a network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	opts = append([]Option{WithLogger(logger)}, opts...)
	c, err := New(baseURL, memStorage{}, opts...)
	require.NoError(t, err)
	return c
}

func TestFetchWithRetry_AllAttemptsFail(t *testing.T) {
	var calls atomic.Int32
	causes := []error{errors.New("attempt 1"), errors.New("attempt 2"), errors.New("attempt 3")}
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		n := calls.Add(1)
		return nil, causes[n-1]
	})}
	c := newTestClient(t, "http://bridge.test/", WithHTTPClient(hc))

	before := testutil.ToFloat64(metrics.RetriesExhausted.WithLabelValues("available"))

	_, err := c.fetchWithRetry(context.Background(), "available", request{method: http.MethodGet}, 3)
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 3, retryErr.Attempts)
	assert.Equal(t, "available", retryErr.Endpoint)
	assert.ErrorIs(t, err, causes[2])
	assert.Equal(t, "attempt 3", err.Error())

	after := testutil.ToFloat64(metrics.RetriesExhausted.WithLabelValues("available"))
	assert.Equal(t, before+1, after)
}

func TestFetchWithRetry_StatusErrorIsSurfacedVerbatim(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	_, err := c.fetchWithRetry(context.Background(), "write", request{method: http.MethodPost}, 3)
	require.Error(t, err)
	assert.Equal(t, "bridge returned status 500", err.Error())
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchWithRetry_RecoversAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	body, err := c.fetchWithRetry(context.Background(), "read", request{
		method:      http.MethodPost,
		contentType: contentTypeJSON,
		body:        []byte(`{"device":{}}`),
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, []string{`{"device":{}}`, `{"device":{}}`, `{"device":{}}`}, bodies, "body must be resent on every attempt")
}

func TestFetchWithRetry_SingleAttemptWhenRetriesBelowOne(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	_, err := c.fetchWithRetry(context.Background(), "default", request{method: http.MethodGet}, 0)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchWithRetry_CancelledContextStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		cancel()
		return nil, fmt.Errorf("bridge went away")
	})}
	c := newTestClient(t, "http://bridge.test/", WithHTTPClient(hc), WithRetryDelay(time.Hour))

	_, err := c.fetchWithRetry(ctx, "write", request{method: http.MethodPost}, 3)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 1, retryErr.Attempts)
}

func TestFetchWithRetry_SendsHeaders(t *testing.T) {
	var gotUA, gotCT, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL+"/bridge", WithUserAgent("kiosk/2"))
	_, err := c.get(context.Background(), endpointAvailable)
	require.NoError(t, err)
	assert.Equal(t, "kiosk/2", gotUA)
	assert.Equal(t, contentTypeText, gotCT)
	assert.Equal(t, "/bridge/available", gotPath)
}

func TestFetchWithRetry_TransportErrorKeepsMessage(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("Network error")
	})}
	c := newTestClient(t, "http://bridge.test/", WithHTTPClient(hc))

	_, err := c.fetchWithRetry(context.Background(), "write", request{method: http.MethodPost}, 3)
	require.Error(t, err)
	assert.Equal(t, "Network error", err.Error())
}

func TestCheckConnection_TransportFailure(t *testing.T) {
	var calls atomic.Int32
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("Network error")
	})}
	c := newTestClient(t, "http://bridge.test/", WithHTTPClient(hc))
	require.NoError(t, c.SetPrinter(Device{Name: "TestPrinter"}))

	got := c.CheckConnection(context.Background())
	assert.Equal(t, ConnectionResult{IsConnected: false, Message: "Connection error: Network error"}, got)
	assert.EqualValues(t, 3, calls.Load())
}
