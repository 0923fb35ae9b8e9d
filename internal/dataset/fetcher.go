package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

// Files are the CSV exports that make up the dataset.
var Files = []string{"revlogs.csv", "cards.csv", "decks.csv"}

// Fetcher downloads the dataset CSV exports from a remote base URL.
type Fetcher struct {
	client        *resty.Client
	baseURL       string
	retryAttempts uint
}

// NewFetcher creates a Fetcher downloading from baseURL, retrying each
// file up to retryAttempts extra times on transient failures.
func NewFetcher(baseURL string, retryAttempts uint) *Fetcher {
	return &Fetcher{
		client:        resty.New(),
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		retryAttempts: retryAttempts,
	}
}

// isRetryableError determines if a download error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	// Retry on 5xx errors (server errors) and rate limiting (429)
	if strings.Contains(errStr, "status code: 5") || strings.Contains(errStr, "status code: 429") {
		return true
	}
	return false
}

// Fetch downloads every dataset file into dir, creating it if needed.
func (f *Fetcher) Fetch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll() > %w", err)
	}

	for _, file := range Files {
		if err := f.fetchFile(ctx, file, filepath.Join(dir, file)); err != nil {
			return fmt.Errorf("failed to fetch %s: %w", file, err)
		}
		slog.Default().Info("Fetched dataset file", "file", file, "dir", dir)
	}
	return nil
}

func (f *Fetcher) fetchFile(ctx context.Context, name, dest string) error {
	url := fmt.Sprintf("%s/%s", f.baseURL, name)
	return retry.Do(
		func() error {
			if err := f.download(ctx, url, dest); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.retryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return fmt.Errorf("client.R().Get() > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("status code: %d", res.StatusCode())
	}
	if err := os.WriteFile(dest, res.Body(), 0644); err != nil {
		return fmt.Errorf("os.WriteFile() > %w", err)
	}
	return nil
}
