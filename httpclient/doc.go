// Package httpclient provides a configurable HTTP client with an
// interceptor pipeline, retry support, per-request timeout and
// cancellation, progress-tracked uploads and downloads, and an
// observable per-client state record.
//
// # Quick Start
//
// Create a Client and issue requests with the verb shortcuts:
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("https://api.example.com"),
//	)
//
//	resp, err := client.Get(ctx, "/users",
//	    httpclient.WithParam("page", "1"),
//	)
//
// # Interceptors
//
// Request and response interceptors run in registration order and may
// replace the value flowing through the chain:
//
//	id := client.UseRequest(func(ctx context.Context, cfg *httpclient.RequestConfig) (*httpclient.RequestConfig, error) {
//	    cfg.Headers["Authorization"] = "Bearer " + token
//	    return cfg, nil
//	}, nil)
//	defer client.EjectRequest(id)
//
// # Retries
//
// Responses with 5xx status and transport-level network failures are
// retried up to the configured budget, waiting the retry delay between
// attempts. Timeouts, explicit cancellations, 4xx responses, and
// interceptor failures are never retried.
//
// # Transfers
//
// Upload and Download stream bodies while feeding a transfer.Tracker,
// sharing the client's configuration, interceptors, and cancellation
// registry with the plain request path.
package httpclient
