package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)
	return srv, client
}

func writeJSON(w http.ResponseWriter, data any) {
	b, _ := json.Marshal(data)
	w.Write(b)
}

func TestPing(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		w.Write([]byte("<html>tagger</html>"))
	})

	require.NoError(t, client.Ping())
}

func TestPingDown(t *testing.T) {
	srv, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	assert.Error(t, client.Ping())
}

func TestHTTPErrorMessage(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		writeJSON(w, map[string]any{"success": false, "message": "malformed snapshot"})
	})

	_, err := client.ExportLibrary()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed snapshot")
}

func TestHTTPErrorPlainBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("<html>Internal Server Error</html>"))
	})

	_, err := client.ExportLibrary()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestRejectedStatus(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false})
	})

	err := client.SaveTags("ghost.png", []string{"cat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "save tags")
}

func TestBuildQuery(t *testing.T) {
	result := buildQuery("/api/browse", QueryParams{"filter": "tagged", "tag": "cat,dog"})
	assert.Contains(t, result, "/api/browse?")
	assert.Contains(t, result, "filter=tagged")
	assert.Contains(t, result, "tag=cat%2Cdog")
}

func TestBuildQueryEmpty(t *testing.T) {
	assert.Equal(t, "/api/browse", buildQuery("/api/browse", nil))
}

func TestBuildQueryDropsEmptyValues(t *testing.T) {
	assert.Equal(t, "/api/search", buildQuery("/api/search", QueryParams{"include": "", "exclude": ""}))
}

func TestNewClientCustomTimeout(t *testing.T) {
	client := NewClient("http://example.com", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://example.com:5000/")
	assert.Equal(t, "http://example.com:5000", client.BaseURL())
}

func TestClientConcurrentRequests(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		writeJSON(w, map[string]any{"results": []any{}, "total": 0})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Browse(FilterAll, nil, 0, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}
