package httpclient

import (
	"bytes"
	"io"

	json "github.com/goccy/go-json"
)

// BodyKind tags the explicit request body variant.
//
// The caller decides the variant; nothing is inferred from runtime
// types. This keeps the encoding rules visible at the call site.
type BodyKind int

const (
	// BodyEmpty means no request body.
	BodyEmpty BodyKind = iota

	// BodyJSON means a structured value serialized as JSON.
	BodyJSON

	// BodyRaw means caller-supplied bytes with an explicit content type.
	BodyRaw

	// BodyMultipart means a multipart form built by the upload path.
	BodyMultipart
)

// Body is a tagged request body variant.
//
// Construct one with EmptyBody, JSONBody, or RawBody. Multipart bodies
// are built internally by Client.Upload from UploadOptions.
type Body struct {
	kind        BodyKind
	jsonValue   any
	raw         []byte
	contentType string

	// progress, when set, observes cumulative bytes consumed from the
	// encoded reader. Installed by the upload path.
	progress func(loaded int64)
}

// EmptyBody returns the no-body variant. The zero Body is equivalent.
func EmptyBody() Body {
	return Body{}
}

// JSONBody returns a body that serializes v as JSON with
// Content-Type application/json.
func JSONBody(v any) Body {
	return Body{kind: BodyJSON, jsonValue: v}
}

// RawBody returns a body of verbatim bytes. contentType may be empty,
// in which case application/octet-stream is used.
func RawBody(b []byte, contentType string) Body {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Body{kind: BodyRaw, raw: b, contentType: contentType}
}

// multipartBody wraps pre-encoded multipart bytes; used by Upload.
func multipartBody(encoded []byte, contentType string) Body {
	return Body{kind: BodyMultipart, raw: encoded, contentType: contentType}
}

// Kind returns the body variant tag.
func (b Body) Kind() BodyKind { return b.kind }

// encode materializes the body as a reader plus content type and
// length. It is called fresh for every attempt so retries never
// consume a drained reader.
func (b Body) encode() (io.Reader, string, int64, error) {
	switch b.kind {
	case BodyEmpty:
		return nil, "", 0, nil
	case BodyJSON:
		data, err := json.Marshal(b.jsonValue)
		if err != nil {
			return nil, "", 0, &ConfigError{Field: "body", Detail: "encoding JSON body: " + err.Error()}
		}
		return bytes.NewReader(data), "application/json", int64(len(data)), nil
	case BodyRaw, BodyMultipart:
		var r io.Reader = bytes.NewReader(b.raw)
		if b.progress != nil {
			r = &countingReader{r: r, report: b.progress}
		}
		return r, b.contentType, int64(len(b.raw)), nil
	default:
		return nil, "", 0, &ConfigError{Field: "body", Detail: "unknown body kind"}
	}
}
