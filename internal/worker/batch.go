package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/pipeline"
)

// Scanner defines the interface for scanning a single URL
type Scanner interface {
	ScanURL(ctx context.Context, url string) (*pipeline.ScanResult, error)
}

// BatchResult is the outcome of one URL in a batch
type BatchResult struct {
	URL    string
	Report *model.ScanReport
	Err    error
}

// BatchProcessor scans multiple URLs with bounded concurrency and
// per-domain rate limiting. Results keep the input order.
type BatchProcessor struct {
	scanner Scanner
	workers int
	limiter *Limiter // nil disables rate limiting
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scanner Scanner, workers int, limiter *Limiter) *BatchProcessor {
	if workers <= 0 {
		workers = 1
	}
	return &BatchProcessor{
		scanner: scanner,
		workers: workers,
		limiter: limiter,
	}
}

// ProcessURLs scans the given URLs concurrently
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []BatchResult {
	results := make([]BatchResult, len(urls))
	semaphore := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = BatchResult{URL: rawURL, Err: ctx.Err()}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if b.limiter != nil {
				if err := b.limiter.Wait(ctx, rawURL); err != nil {
					results[idx] = BatchResult{URL: rawURL, Err: err}
					return
				}
			}

			res, err := b.scanner.ScanURL(ctx, rawURL)
			result := BatchResult{URL: rawURL, Err: err}
			if res != nil {
				result.Report = res.Report
			}
			results[idx] = result
		}(i, u)
	}

	wg.Wait()
	return results
}

// ProcessFile reads URLs from a file and scans them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]BatchResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file, one per line, skipping blanks,
// comments and duplicates.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
