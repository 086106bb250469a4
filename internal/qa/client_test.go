package qa

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func newTestClient(t *testing.T, handler http.HandlerFunc, retry RetryPolicy) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, Retry: retry}), srv
}

func TestAskSendsPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathAsk, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is X?", body["query"])
		assert.EqualValues(t, 5, body["top_k"])
		assert.Equal(t, "doc-1", body["document_id"])
		_, _ = io.WriteString(w, `{"answer":"X is a method.","sources":[{"page":1}],"query":"What is X?"}`)
	}, fastRetry)

	answer, err := client.Ask(context.Background(), "What is X?", "doc-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "X is a method.", answer.Answer)
	assert.Len(t, answer.Sources, 1)
	assert.Equal(t, "What is X?", answer.Query)
}

func TestAskOmitsEmptyDocumentID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["document_id"]
		assert.False(t, present)
		assert.EqualValues(t, 8, body["top_k"])
		_, _ = io.WriteString(w, `{"answer":"ok","sources":[],"query":"q"}`)
	}, fastRetry)

	_, err := client.Ask(context.Background(), "q", "", 8)
	require.NoError(t, err)
}

func TestAskRejectsBlankQuery(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, fastRetry)

	_, err := client.Ask(context.Background(), "   ", "doc", 5)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestServiceErrorRetriedOnlyWhenServerSide(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"internal error retried", http.StatusInternalServerError, 3},
		{"rate limited retried", http.StatusTooManyRequests, 3},
		{"bad request permanent", http.StatusBadRequest, 1},
		{"not found permanent", http.StatusNotFound, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				http.Error(w, "boom", tt.status)
			}, fastRetry)

			_, err := client.FollowUp(context.Background(), "q", "doc")
			var svc *ServiceError
			require.True(t, errors.As(err, &svc))
			assert.Equal(t, tt.status, svc.Status)
			assert.Equal(t, "boom", svc.Body)
			assert.ErrorIs(t, err, ErrService)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"questions":["Why?","How?"]}`)
	}, fastRetry)

	out, err := client.FollowUp(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Why?", "How?"}, out.Questions)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSingleAttemptDoesNotRetry(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}, SingleAttempt())

	_, err := client.Ask(context.Background(), "q", "", 5)
	assert.ErrorIs(t, err, ErrService)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url, Timeout: time.Second, Retry: fastRetry})
	_, err := client.Ask(context.Background(), "q", "", 5)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	assert.True(t, strings.HasPrefix(netErr.URL, url))
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, Retryable(err))
}

func TestTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Retry: SingleAttempt()})
	_, err := client.Ask(context.Background(), "q", "", 5)
	assert.ErrorIs(t, err, ErrTimeout)
	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "ask", timeout.Op)
}

func TestMalformedResponseIsServiceError(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, "<html>")
	}, fastRetry)

	_, err := client.Ask(context.Background(), "q", "", 5)
	assert.ErrorIs(t, err, ErrService)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		cancel()
		http.Error(w, "down", http.StatusInternalServerError)
	}, RetryPolicy{MaxAttempts: 5, InitialInterval: 50 * time.Millisecond})

	_, err := client.Ask(ctx, "q", "", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr), "cancellation must not surface as a service error")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDeadlineDuringBackoffIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}, RetryPolicy{MaxAttempts: 5, InitialInterval: time.Second})

	_, err := client.Ask(ctx, "q", "", 5)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSummarize(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathSummarize, r.URL.Path)
		var body SummaryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, SummaryRequest{DocID: "doc-9", SummaryType: "executive", MaxLength: 120}, body)
		_, _ = io.WriteString(w, `{"summary":"Paper studies X.","document_id":"doc-9","summary_type":"executive","length":3}`)
	}, fastRetry)

	out, err := client.Summarize(context.Background(), SummaryRequest{DocID: "doc-9", SummaryType: "executive", MaxLength: 120})
	require.NoError(t, err)
	assert.Equal(t, "Paper studies X.", out.Summary)
	assert.Equal(t, 3, out.Length)

	_, err = client.Summarize(context.Background(), SummaryRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, defaultBaseURL, client.BaseURL())
	assert.Equal(t, defaultTimeout, client.timeout)
	assert.Equal(t, DefaultRetryPolicy(), client.retry)
}

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	assert.Same(t, custom, pickHTTPClient(custom, time.Second))
	assert.Equal(t, time.Minute, pickHTTPClient(nil, time.Minute).Timeout)
}
