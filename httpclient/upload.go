package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/lumen-labs/pulse-go/transfer"
)

// FilePart is one file entry in a multipart upload.
type FilePart struct {
	// FieldName is the multipart form field name, e.g. "document".
	FieldName string

	// FileName is the name the file carries in the upload.
	FileName string

	// Reader provides the file content.
	Reader io.Reader
}

// FilePartFromFile builds a FilePart from a filesystem path. The file
// is opened lazily when the form is encoded.
func FilePartFromFile(fieldName, path string) FilePart {
	return FilePart{
		FieldName: fieldName,
		FileName:  filepath.Base(path),
		Reader:    &lazyFileReader{path: path},
	}
}

// UploadOptions describes one multipart upload.
type UploadOptions struct {
	// Files are the file entries, written in order.
	Files []FilePart

	// Fields are plain form fields, written before the files in
	// sorted key order. String values are written verbatim; anything
	// else is serialized as JSON.
	Fields map[string]any

	// Tracker observes upload progress. Optional; subscribe before
	// calling Upload to see every update.
	Tracker *transfer.Tracker
}

// Upload POSTs a multipart form and reports progress through the
// tracker. The form is encoded up front, so the tracked total is the
// exact encoded length including boundaries and field parts.
//
// Uploads are never retried: a replayed body would report progress
// twice for the same transfer.
func (c *Client) Upload(ctx context.Context, url string, upload UploadOptions, opts ...RequestOption) (*Response, error) {
	encoded, contentType, err := encodeMultipart(upload)
	if err != nil {
		return nil, &ConfigError{Field: "upload", Detail: err.Error()}
	}

	tracker := upload.Tracker
	if tracker == nil {
		tracker = transfer.NewTracker()
	}
	total := int64(len(encoded))
	tracker.Start(total)

	body := multipartBody(encoded, contentType)
	body.progress = func(loaded int64) {
		tracker.Update(loaded, total)
	}

	callOpts := append(append([]RequestOption{WithBody(body)}, opts...), WithRequestRetries(0))
	resp, err := c.Do(ctx, http.MethodPost, url, callOpts...)
	if err != nil {
		tracker.Fail(err)
		return nil, err
	}

	tracker.Complete()
	return resp, nil
}

// encodeMultipart writes fields and files into one multipart body.
// Field order is sorted by key so the encoding is deterministic.
func encodeMultipart(upload UploadOptions) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(upload.Fields))
	for k := range upload.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value, err := fieldValue(upload.Fields[k])
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField(k, value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range upload.Files {
		part, err := w.CreateFormFile(f.FieldName, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// fieldValue renders one form field: strings verbatim, everything else
// as JSON.
func fieldValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// countingReader reports the cumulative bytes read from the wrapped
// reader.
type countingReader struct {
	r      io.Reader
	loaded int64
	report func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.loaded += int64(n)
		c.report(c.loaded)
	}
	return n, err
}

// lazyFileReader opens its file on first read and closes it at EOF.
type lazyFileReader struct {
	path string
	f    *os.File
}

func (l *lazyFileReader) Read(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Open(l.path)
		if err != nil {
			return 0, err
		}
		l.f = f
	}
	n, err := l.f.Read(p)
	if err == io.EOF {
		l.f.Close()
	}
	return n, err
}
