package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-labs/pulse-go/transfer"
)

// downloadChunkSize is the read granularity for progress updates.
const downloadChunkSize = 32 * 1024

// DownloadOptions describes one download.
type DownloadOptions struct {
	// Tracker observes download progress. Optional; subscribe before
	// calling Download to see every update.
	Tracker *transfer.Tracker

	// Path, when set, streams the body to this file instead of memory.
	// The write goes through a temp file in the same directory and a
	// rename, so a failed download never leaves a partial file behind.
	Path string
}

// DownloadResult is the outcome of a completed download.
type DownloadResult struct {
	// Data holds the body when no Path was given, nil otherwise.
	Data []byte

	// Size is the number of bytes received.
	Size int64

	// Path is the saved file location, empty for in-memory downloads.
	Path string

	// Status is the HTTP status code.
	Status int

	// Headers are the response headers.
	Headers http.Header
}

// Download GETs a resource while reporting progress per chunk through
// the tracker. When the server omits Content-Length the total is
// unknown and progress stays at 0 until completion.
//
// Downloads are never retried; the request is still cancellable by id
// and honors the configured timeout across the whole transfer.
func (c *Client) Download(ctx context.Context, url string, dl DownloadOptions, opts ...RequestOption) (*DownloadResult, error) {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}

	c.mu.Lock()
	cfg := c.config.clone()
	c.mu.Unlock()

	rc, err := resolveConfig(cfg, http.MethodGet, url, ro)
	if err != nil {
		return nil, err
	}

	tracker := dl.Tracker
	if tracker == nil {
		tracker = transfer.NewTracker()
	}

	id := ro.requestID
	if id == "" {
		id = uuid.NewString()
	}
	token := newCancelToken(ctx)
	c.registry.add(id, token)
	defer func() {
		c.registry.remove(id)
		token.release()
	}()

	c.state.begin(rc.Method, rc.URL)
	defer c.state.end()

	result, err := c.download(token.ctx, rc, dl.Path, tracker)
	if err != nil {
		tracker.Fail(err)
		c.state.fail(err.Error())
		return nil, err
	}
	return result, nil
}

func (c *Client) download(parent context.Context, rc *RequestConfig, path string, tracker *transfer.Tracker) (*DownloadResult, error) {
	rc, err := c.chain.runRequest(parent, rc)
	if err != nil {
		return nil, err
	}
	echo := rc.echo()

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(context.Canceled)

	if rc.Timeout > 0 {
		timer := time.AfterFunc(rc.Timeout, func() { cancel(errTimedOut) })
		defer timer.Stop()
	}

	req, err := http.NewRequestWithContext(ctx, rc.Method, rc.URL, nil)
	if err != nil {
		return nil, &ConfigError{Field: "url", Detail: err.Error()}
	}
	for k, v := range rc.Headers {
		req.Header.Set(k, v)
	}
	if rc.WithCredentials && c.jar != nil {
		for _, ck := range c.jar.Cookies(req.URL) {
			req.AddCookie(ck)
		}
	}

	if c.debug {
		logRequest(c.logger, req)
	}

	httpResp, err := c.exec.transport.RoundTrip(req)
	if err != nil {
		return nil, classifyTransportFailure(ctx, echo, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		raw, rerr := io.ReadAll(httpResp.Body)
		if rerr != nil {
			return nil, classifyTransportFailure(ctx, echo, rerr)
		}
		resp, _ := newResponse(rc, echo, httpResp, raw)
		return nil, newStatusError(resp)
	}

	total := httpResp.ContentLength
	if total < 0 {
		total = 0
	}
	tracker.Start(total)

	var sink io.Writer
	var buf bytes.Buffer
	var tmp *os.File
	if path == "" {
		sink = &buf
	} else {
		tmp, err = os.CreateTemp(filepath.Dir(path), ".download-*")
		if err != nil {
			return nil, newNetworkError(echo, err)
		}
		defer func() {
			if tmp != nil {
				tmp.Close()
				os.Remove(tmp.Name())
			}
		}()
		sink = tmp
	}

	loaded, err := copyChunks(ctx, sink, httpResp.Body, total, tracker, echo)
	if err != nil {
		return nil, err
	}
	tracker.Complete()

	result := &DownloadResult{
		Size:    loaded,
		Status:  httpResp.StatusCode,
		Headers: httpResp.Header,
	}

	if path == "" {
		result.Data = buf.Bytes()
		return result, nil
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		tmp = nil
		return nil, newNetworkError(echo, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		tmp = nil
		return nil, newNetworkError(echo, err)
	}
	tmp = nil
	result.Path = path
	return result, nil
}

// copyChunks streams body to sink in fixed chunks, checking for
// cancellation and updating the tracker between reads.
func copyChunks(ctx context.Context, sink io.Writer, body io.Reader, total int64, tracker *transfer.Tracker, echo *RequestEcho) (int64, error) {
	chunk := make([]byte, downloadChunkSize)
	var loaded int64

	for {
		if err := ctx.Err(); err != nil {
			return loaded, classifyTransportFailure(ctx, echo, err)
		}

		n, err := body.Read(chunk)
		if n > 0 {
			if _, werr := sink.Write(chunk[:n]); werr != nil {
				return loaded, newNetworkError(echo, werr)
			}
			loaded += int64(n)
			tracker.Update(loaded, total)
		}
		if err == io.EOF {
			return loaded, nil
		}
		if err != nil {
			return loaded, classifyTransportFailure(ctx, echo, err)
		}
	}
}
