package tracemoe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

// -- Mock search log ---------------------------------------------------------

type recordedAttempt struct {
	userID int64
	code   int
}

type mockSearchLog struct {
	mu      sync.Mutex
	records []recordedAttempt
	err     error
}

func (m *mockSearchLog) Record(_ context.Context, userID int64, code int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recordedAttempt{userID: userID, code: code})
	return m.err
}

func (m *mockSearchLog) CountSuccess(_ context.Context, _ int64, _ time.Time) (int, error) {
	return 0, nil
}

func (m *mockSearchLog) Enabled() bool { return true }
func (m *mockSearchLog) Close() error  { return nil }

// -- Helpers -----------------------------------------------------------------

// newTestClient serves handler and returns a client with instant backoff.
// searchLog may be nil; a typed nil mock would defeat the client's nil check.
func newTestClient(t *testing.T, handler http.HandlerFunc, searchLog ports.SearchLog) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	policy := DefaultRetryPolicy()
	c := NewClient(srv.URL, "", srv.Client(), policy, searchLog, nil)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c, &hits
}

func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

func requireSearchError(t *testing.T, err error) *domain.SearchError {
	t.Helper()
	var searchErr *domain.SearchError
	require.True(t, errors.As(err, &searchErr), "expected *domain.SearchError, got %v", err)
	return searchErr
}

// -- Tests -------------------------------------------------------------------

func TestSearch_Success(t *testing.T) {
	var gotQuery string
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/search", r.URL.Path)
		fmt.Fprint(w, `{"frameCount":100,"error":"","result":[
			{"anilist":21034,"filename":"Kimi no Na wa.mp4","from":62.1,"to":64.9,"similarity":0.95,"video":"https://media.trace.moe/video/21034/x.mp4?t=63&now=1&token=abc"},
			{"anilist":1,"filename":"other.mp4","from":0,"to":1,"similarity":0.5,"video":""}
		]}`)
	}, nil)

	match, err := c.Search(context.Background(), "https://example.com/a b.jpg", 42, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), *hits)
	assert.Equal(t, 21034, match.AnimeID)
	assert.Equal(t, "Kimi no Na wa.mp4", match.Filename)
	assert.InDelta(t, 0.95, match.Similarity, 1e-9)
	assert.InDelta(t, 62.1, match.SegmentStart, 1e-9)
	assert.InDelta(t, 64.9, match.SegmentEnd, 1e-9)
	assert.Contains(t, match.VideoURL, "media.trace.moe")
	assert.Contains(t, gotQuery, "cutBorders=1")
	assert.Contains(t, gotQuery, "url=https%3A%2F%2Fexample.com%2Fa+b.jpg")
}

func TestSearch_NoCropOmitsCutBorders(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"result":[{"anilist":1,"filename":"a","from":0,"to":0,"similarity":1,"video":"https://v"}]}`)
	}, nil)

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{NoCrop: true})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "cutBorders")
}

func TestSearch_SendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-trace-key")
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", srv.Client(), DefaultRetryPolicy(), nil, nil)
	_, _ = c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	assert.Equal(t, "secret-key", gotKey)
}

func TestSearch_AnilistObjectAccepted(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":[{"anilist":{"id":777,"isAdult":false},"filename":"a","from":1,"to":2,"similarity":0.9,"video":"https://v"}]}`)
	}, nil)

	match, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 777, match.AnimeID)
}

func TestSearch_RetriesPersistentFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   domain.ErrorKind
	}{
		{"overloaded", http.StatusServiceUnavailable, domain.ErrorKindBusy},
		{"quota", http.StatusPaymentRequired, domain.ErrorKindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searchLog := &mockSearchLog{}
			c, hits := newTestClient(t, statusHandler(tt.status), searchLog)

			_, err := c.Search(context.Background(), "https://example.com/img.png", 7, domain.SearchOptions{})
			searchErr := requireSearchError(t, err)

			assert.Equal(t, int32(5), *hits)
			assert.Equal(t, tt.kind, searchErr.Kind)
			assert.Equal(t, tt.status, searchErr.Status)
			assert.Equal(t, 5, searchErr.Attempts)
			require.Len(t, searchLog.records, 5)
			assert.Equal(t, recordedAttempt{userID: 7, code: tt.status}, searchLog.records[4])
		})
	}
}

func TestSearch_NonRetryableStatusStopsImmediately(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   domain.ErrorKind
	}{
		{"bad request", http.StatusBadRequest, domain.ErrorKindBadStatus},
		{"internal error", http.StatusInternalServerError, domain.ErrorKindBadStatus},
		{"bad gateway", http.StatusBadGateway, domain.ErrorKindBusy},
		{"gateway timeout", http.StatusGatewayTimeout, domain.ErrorKindBusy},
		{"too many requests", http.StatusTooManyRequests, domain.ErrorKindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, statusHandler(tt.status), nil)

			_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
			searchErr := requireSearchError(t, err)

			assert.Equal(t, int32(1), *hits)
			assert.Equal(t, tt.kind, searchErr.Kind)
			assert.Equal(t, 1, searchErr.Attempts)
		})
	}
}

func TestSearch_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	c, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"result":[{"anilist":5,"filename":"a","from":0,"to":0,"similarity":0.99,"video":"https://v"}]}`)
	}, nil)

	match, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), *hits)
	assert.Equal(t, 5, match.AnimeID)
}

func TestSearch_UpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":"Failed to fetch image https://api.telegram.org/file/botTELEGRAM_TOKEN/x.jpg","result":[]}`)
	}, nil)

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	searchErr := requireSearchError(t, err)
	assert.Equal(t, domain.ErrorKindUpstream, searchErr.Kind)
	assert.Contains(t, searchErr.Message, "Failed to fetch image")
}

func TestSearch_NoResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"frameCount":0,"error":"","result":[]}`)
	}, nil)

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	assert.Equal(t, domain.ErrorKindNoResults, requireSearchError(t, err).Kind)
}

func TestSearch_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"null body", `null`},
		{"missing result list", `{"frameCount":10}`},
		{"empty result object", `{"result":[{}]}`},
		{"missing filename", `{"result":[{"anilist":1,"from":0,"to":1,"similarity":0.9,"video":"https://v"}]}`},
		{"similarity above one", `{"result":[{"anilist":1,"filename":"a","similarity":12.5}]}`},
		{"negative similarity", `{"result":[{"anilist":1,"filename":"a","similarity":-0.1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}, nil)

			_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
			searchErr := requireSearchError(t, err)
			assert.Equal(t, domain.ErrorKindMalformed, searchErr.Kind)
			assert.Equal(t, int32(1), *hits)
		})
	}
}

func TestSearch_WithoutSearchLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":[{"anilist":5,"filename":"a","from":0,"to":0,"similarity":0.99,"video":"https://v"}]}`)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "", srv.Client(), DefaultRetryPolicy(), nil, nil)

	match, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a", match.Filename)
}

func TestSearch_NetworkFailureRetriedThenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	searchLog := &mockSearchLog{}
	c := NewClient(baseURL, "", nil, DefaultRetryPolicy(), searchLog, nil)
	var sleeps int
	c.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	searchErr := requireSearchError(t, err)
	assert.Equal(t, domain.ErrorKindUnavailable, searchErr.Kind)
	assert.Equal(t, 5, searchErr.Attempts)
	assert.Equal(t, 4, sleeps)
	assert.Empty(t, searchLog.records, "attempts without a response are not logged")
}

func TestSearch_SearchLogFailureIgnored(t *testing.T) {
	searchLog := &mockSearchLog{err: errors.New("database is down")}
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":[{"anilist":5,"filename":"a","from":0,"to":0,"similarity":0.99,"video":"https://v"}]}`)
	}, searchLog)

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, searchLog.records, 1)
}

func TestSearch_CancelledBackoffStopsRetrying(t *testing.T) {
	c, hits := newTestClient(t, statusHandler(http.StatusServiceUnavailable), nil)
	c.sleep = func(context.Context, time.Duration) error { return context.DeadlineExceeded }

	_, err := c.Search(context.Background(), "https://example.com/img.png", 1, domain.SearchOptions{})
	assert.Equal(t, domain.ErrorKindBusy, requireSearchError(t, err).Kind)
	assert.Equal(t, int32(1), *hits)
}
