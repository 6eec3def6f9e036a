package httpclient

import (
	"net/url"
	"sort"
	"strings"
)

// supportedMethods is the closed set of verbs the client accepts.
var supportedMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "PATCH": {},
	"DELETE": {}, "HEAD": {}, "OPTIONS": {},
}

// resolveConfig merges the client config with per-call options into
// one effective RequestConfig and builds the final URL.
//
// Header precedence is builtin defaults, then client headers, then
// per-call headers — later wins per key, matched exactly as provided.
// The cfg argument must already be a private copy (see Config.clone);
// resolution happens once at submission time, so mutating the client
// afterwards never affects this request.
func resolveConfig(cfg Config, method, rawURL string, opts *requestOptions) (*RequestConfig, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := supportedMethods[method]; !ok {
		return nil, &ConfigError{Field: "method", Detail: "unsupported method " + method}
	}

	headers := make(map[string]string, len(cfg.Headers)+len(opts.headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	for k, v := range opts.headers {
		headers[k] = v
	}

	rc := &RequestConfig{
		Method:          method,
		URL:             buildURL(cfg.BaseURL, rawURL, opts.params),
		Headers:         headers,
		Body:            opts.body,
		Timeout:         cfg.Timeout,
		WithCredentials: cfg.WithCredentials,
		Retries:         cfg.Retries,
		RetryDelay:      cfg.RetryDelay,
	}

	if opts.hasTimeout {
		rc.Timeout = opts.timeout
	}
	if opts.hasRetries {
		rc.Retries = opts.retries
	}
	if opts.hasRetryDelay {
		rc.RetryDelay = opts.retryDelay
	}
	if opts.hasCredentials {
		rc.WithCredentials = opts.withCredentials
	}
	if rc.Retries < 0 {
		return nil, &ConfigError{Field: "retries", Detail: "must not be negative"}
	}
	if rc.RetryDelay < 0 {
		return nil, &ConfigError{Field: "retryDelay", Detail: "must not be negative"}
	}

	return rc, nil
}

// buildURL concatenates base and path unless the path already carries
// an http scheme, then appends the encoded query string.
func buildURL(base, path string, params map[string][]string) string {
	full := path
	if !strings.HasPrefix(path, "http") {
		full = base + path
	}

	query := encodeQuery(params)
	if query == "" {
		return full
	}
	if strings.Contains(full, "?") {
		return full + "&" + query
	}
	return full + "?" + query
}

// encodeQuery serializes params deterministically: keys in sorted
// order, list values expanded to repeated pairs in list order, keys
// without values skipped entirely.
func encodeQuery(params map[string][]string) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if len(params[k]) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range params[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
