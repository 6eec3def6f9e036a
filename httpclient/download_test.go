package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-labs/pulse-go/transfer"
)

func TestClientDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("pulse-data-"), 10_000)

	newServer := func(t *testing.T, chunked bool) *httptest.Server {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/file" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			if !chunked {
				w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			}
			if chunked {
				// No Content-Length: total stays unknown.
				flusher := w.(http.Flusher)
				w.WriteHeader(http.StatusOK)
				w.Write(payload[:len(payload)/2])
				flusher.Flush()
				w.Write(payload[len(payload)/2:])
				return
			}
			w.Write(payload)
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("given a known length, then progress walks to 100", func(t *testing.T) {
		srv := newServer(t, false)
		client := New(WithBaseURL(srv.URL))

		tracker := transfer.NewTracker()
		var mu sync.Mutex
		var progress []int
		stop := tracker.Subscribe(func(s transfer.State) {
			mu.Lock()
			progress = append(progress, s.Progress)
			mu.Unlock()
		})
		defer stop()

		result, err := client.Download(context.Background(), "/file", DownloadOptions{Tracker: tracker})
		require.NoError(t, err)
		assert.Equal(t, payload, result.Data)
		assert.Equal(t, int64(len(payload)), result.Size)
		assert.Equal(t, 200, result.Status)

		final := tracker.State()
		assert.Equal(t, transfer.StatusCompleted, final.Status)
		assert.Equal(t, 100, final.Progress)
		assert.Equal(t, int64(len(payload)), final.Loaded)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 100, progress[len(progress)-1])
	})

	t.Run("given an unknown length, then progress stays at 0 until completion", func(t *testing.T) {
		srv := newServer(t, true)
		client := New(WithBaseURL(srv.URL))

		tracker := transfer.NewTracker()
		result, err := client.Download(context.Background(), "/file", DownloadOptions{Tracker: tracker})
		require.NoError(t, err)
		assert.Equal(t, payload, result.Data)

		final := tracker.State()
		assert.Equal(t, transfer.StatusCompleted, final.Status)
		assert.Equal(t, 100, final.Progress)
		assert.Zero(t, final.Total)
	})

	t.Run("given a save path, then exactly the streamed bytes land on disk", func(t *testing.T) {
		srv := newServer(t, false)
		client := New(WithBaseURL(srv.URL))

		path := filepath.Join(t.TempDir(), "out.bin")
		result, err := client.Download(context.Background(), "/file", DownloadOptions{Path: path})
		require.NoError(t, err)
		assert.Equal(t, path, result.Path)
		assert.Nil(t, result.Data)

		saved, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, payload, saved)
	})

	t.Run("given a failed download, then no partial file is left behind", func(t *testing.T) {
		srv := newServer(t, false)
		client := New(WithBaseURL(srv.URL))

		dir := t.TempDir()
		path := filepath.Join(dir, "out.bin")
		_, err := client.Download(context.Background(), "/missing", DownloadOptions{Path: path})
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("given a 404, then the error carries the status", func(t *testing.T) {
		srv := newServer(t, false)
		client := New(WithBaseURL(srv.URL))

		tracker := transfer.NewTracker()
		_, err := client.Download(context.Background(), "/missing", DownloadOptions{Tracker: tracker})
		he, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, 404, he.Status)
		assert.Equal(t, transfer.StatusError, tracker.State().Status)
	})

	t.Run("given cancellation mid-transfer, then the download fails cancelled", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "1000000")
			w.WriteHeader(http.StatusOK)
			w.Write(make([]byte, 1024))
			w.(http.Flusher).Flush()
			<-release
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		client := New(WithBaseURL(srv.URL), WithTimeout(5*time.Second))

		go func() {
			time.Sleep(30 * time.Millisecond)
			client.CancelRequest("dl-1")
		}()

		tracker := transfer.NewTracker()
		_, err := client.Download(context.Background(), "/big", DownloadOptions{Tracker: tracker},
			WithRequestID("dl-1"))
		require.True(t, IsCancelled(err))
		assert.Equal(t, transfer.StatusError, tracker.State().Status)
	})

	t.Run("given request interceptors, then downloads run them too", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte("ok"))
		}))
		t.Cleanup(srv.Close)

		client := New(WithBaseURL(srv.URL))
		client.UseRequest(BearerAuth("tok"), nil)

		_, err := client.Download(context.Background(), "/file", DownloadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", gotAuth)
	})
}
