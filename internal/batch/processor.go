// Package batch orchestrates the per-user pipeline across a worker pool
// and persists the surviving results as JSON lines.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/ankitools/revstats/internal/dataset"
	"github.com/ankitools/revstats/internal/statistics"
)

// Processor runs the load-aggregate pipeline for many users.
type Processor struct {
	loader   *dataset.Loader
	console  io.Writer
	progress io.Writer

	// serializes console and progress writes across workers
	mu sync.Mutex
}

// Option configures a Processor.
type Option func(*Processor)

// WithConsole redirects the per-user diagnostic lines.
func WithConsole(w io.Writer) Option {
	return func(p *Processor) {
		p.console = w
	}
}

// WithProgress redirects the progress indicator.
func WithProgress(w io.Writer) Option {
	return func(p *Processor) {
		p.progress = w
	}
}

// NewProcessor creates a new Processor. Diagnostics go to stdout and
// the progress indicator to stderr unless overridden.
func NewProcessor(loader *dataset.Loader, opts ...Option) *Processor {
	p := &Processor{
		loader:   loader,
		console:  os.Stdout,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the pipeline for every user across maxWorkers concurrent
// workers (0 or less picks one worker per CPU), writes the surviving
// results to outputPath as one compact JSON object per line, and
// returns them.
//
// The output row order always matches the input userIDs order: results
// are buffered by submission position, not completion order. Users that
// fail any pipeline stage are skipped with a console diagnostic and are
// absent from the output. Only a failure to create the output directory
// or write the output file aborts the run.
func (p *Processor) Process(ctx context.Context, userIDs []int64, outputPath string, maxWorkers int) ([]statistics.UserStatistics, error) {
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll() > %w", err)
		}
	}

	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*statistics.UserStatistics, len(userIDs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var done atomic.Int64

	for i, userID := range userIDs {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if stats, ok := p.processUser(ctx, userID); ok {
				results[i] = &stats
			}

			n := done.Add(1)
			p.mu.Lock()
			fmt.Fprintf(p.progress, "\rProcessed %d/%d users", n, len(userIDs))
			p.mu.Unlock()
		}(i, userID)
	}
	wg.Wait()
	fmt.Fprintln(p.progress)

	succeeded := make([]statistics.UserStatistics, 0, len(results))
	for _, result := range results {
		if result != nil {
			succeeded = append(succeeded, *result)
		}
	}

	if err := writeResults(outputPath, succeeded); err != nil {
		return nil, err
	}
	fmt.Fprintf(p.console, "Results saved to %s\n", outputPath)

	return succeeded, nil
}

// processUser runs load then aggregate for one user. Any failure is
// reported on the console and turns into a skip; nothing propagates.
func (p *Processor) processUser(ctx context.Context, userID int64) (statistics.UserStatistics, bool) {
	joined, err := p.loader.Load(ctx, userID)
	if err != nil {
		var notFound *dataset.NotFoundError
		if errors.As(err, &notFound) {
			p.printf(color.New(color.FgYellow), "%s\n", err)
		} else {
			p.printf(color.New(color.FgRed), "Error processing user %d: %v\n", userID, err)
		}
		return statistics.UserStatistics{}, false
	}

	stats, err := statistics.Aggregate(userID, joined)
	if err != nil {
		p.printf(color.New(color.FgRed), "Error processing user %d: %v\n", userID, err)
		return statistics.UserStatistics{}, false
	}

	retention := "n/a"
	if stats.RetentionRate != nil {
		retention = fmt.Sprintf("%.2f", *stats.RetentionRate)
	}
	p.printf(color.New(color.FgGreen),
		"User %d: Revlogs: %d, Average review count per note: %.2f, per card: %.2f, retention rate: %s\n",
		userID, stats.RevlogsCount, stats.AvgReviewCountPerNote, stats.AvgReviewCountPerCard, retention)
	return stats, true
}

func (p *Processor) printf(c *color.Color, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Fprintf(p.console, format, args...)
}

// writeResults truncates path and writes one JSON object per line. The
// file handle is closed unconditionally; a close failure surfaces as
// the returned error when the writes themselves succeeded.
func writeResults(path string, results []statistics.UserStatistics) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create() > %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("f.Close() > %w", closeErr)
		}
	}()

	encoder := json.NewEncoder(f)
	for _, result := range results {
		if encodeErr := encoder.Encode(result); encodeErr != nil {
			return fmt.Errorf("encoder.Encode(user %d) > %w", result.UserID, encodeErr)
		}
	}
	return nil
}
