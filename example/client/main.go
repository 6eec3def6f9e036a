// Command client demonstrates the pulse-go HTTP client: interceptors,
// retries, cancellation, and a progress-tracked download.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumen-labs/pulse-go/httpclient"
	"github.com/lumen-labs/pulse-go/transfer"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	client := httpclient.New(
		httpclient.WithBaseURL("https://httpbin.org"),
		httpclient.WithTimeout(10*time.Second),
		httpclient.WithRetries(2),
		httpclient.WithRetryDelay(500*time.Millisecond),
		httpclient.WithLogger(logger),
		httpclient.WithDebug(),
	)

	client.UseRequest(httpclient.UserAgent("pulse-example/1.0"), nil)
	client.UseResponse(func(_ context.Context, resp *httpclient.Response) (*httpclient.Response, error) {
		logger.Info().Int("status", resp.Status).Msg("response interceptor")
		return resp, nil
	}, nil)

	stop := client.Subscribe(func(s httpclient.State) {
		logger.Info().
			Bool("loading", s.Loading).
			Int("pending", s.PendingRequests).
			Msg("client state")
	})
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Plain JSON GET with query parameters.
	resp, err := client.Get(ctx, "/get",
		httpclient.WithParam("page", "1"),
		httpclient.WithParam("tag", "a", "b"),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("get failed")
	}
	fmt.Printf("GET /get -> %d (%d bytes)\n", resp.Status, len(resp.Body))

	// POST with a JSON body.
	resp, err = client.Post(ctx, "/post", httpclient.JSONBody(map[string]any{
		"name": "pulse",
		"tags": []string{"http", "client"},
	}))
	if err != nil {
		logger.Fatal().Err(err).Msg("post failed")
	}
	fmt.Printf("POST /post -> %d\n", resp.Status)

	// Download with progress tracking.
	tracker := transfer.NewTracker()
	unsub := tracker.Subscribe(func(s transfer.State) {
		fmt.Printf("\rdownloading: %3d%% (%d/%d bytes, %d B/s)", s.Progress, s.Loaded, s.Total, s.Speed)
	})
	defer unsub()

	result, err := client.Download(ctx, "/bytes/262144", httpclient.DownloadOptions{
		Tracker: tracker,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("download failed")
	}
	fmt.Printf("\ndownloaded %d bytes (status %d)\n", result.Size, result.Status)
}
