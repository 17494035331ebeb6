package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/pipeline"
)

// fakeScanner records concurrency and fails URLs ending in "!"
type fakeScanner struct {
	active  atomic.Int32
	peak    atomic.Int32
	scanned atomic.Int32
}

func (f *fakeScanner) ScanURL(_ context.Context, url string) (*pipeline.ScanResult, error) {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if cur <= peak || f.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	f.scanned.Add(1)

	if len(url) > 0 && url[len(url)-1] == '!' {
		return nil, errors.New("scan failed")
	}
	return &pipeline.ScanResult{Report: &model.ScanReport{SourceURL: url, Status: model.StatusDone}}, nil
}

func TestBatch_OrderPreserved(t *testing.T) {
	scanner := &fakeScanner{}
	b := NewBatchProcessor(scanner, 4, nil)

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page-%d", i)
	}

	results := b.ProcessURLs(context.Background(), urls)
	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Errorf("result %d: URL = %q, want %q", i, r.URL, urls[i])
		}
		if r.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, r.Err)
		}
		if r.Report == nil || r.Report.SourceURL != urls[i] {
			t.Errorf("result %d: report mismatch", i)
		}
	}
}

func TestBatch_WorkerBound(t *testing.T) {
	scanner := &fakeScanner{}
	b := NewBatchProcessor(scanner, 2, nil)

	urls := make([]string, 30)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	b.ProcessURLs(context.Background(), urls)

	if peak := scanner.peak.Load(); peak > 2 {
		t.Errorf("concurrency peaked at %d, limit is 2", peak)
	}
	if scanned := scanner.scanned.Load(); scanned != 30 {
		t.Errorf("scanned %d of 30", scanned)
	}
}

func TestBatch_ErrorsIsolated(t *testing.T) {
	scanner := &fakeScanner{}
	b := NewBatchProcessor(scanner, 2, nil)

	results := b.ProcessURLs(context.Background(), []string{
		"https://example.com/good",
		"https://example.com/bad!",
		"https://example.com/also-good",
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy URLs must not inherit a neighbor's failure")
	}
	if results[1].Err == nil {
		t.Error("expected error for failing URL")
	}
	if results[1].Report != nil {
		t.Error("failed URL must not carry a report")
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	scanner := &fakeScanner{}
	b := NewBatchProcessor(scanner, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := b.ProcessURLs(ctx, []string{"https://example.com/a", "https://example.com/b"})
	for i, r := range results {
		if r.Err == nil && r.Report == nil {
			t.Errorf("result %d: neither error nor report", i)
		}
	}
}

func TestBatch_RealPipelineConcurrentScans(t *testing.T) {
	// Pages are independent sessions; parallel workers scanning different
	// URLs must never trip the per-session trigger guard.
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="answer">Paris is the capital of France. It has a population of 2.1 million.</div></body></html>`))
	}))
	defer pages.Close()

	// Slow verification keeps all workers in flight at once
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer backend.Close()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.HTTP.RespectRobots = false
	cfg.Verify.Provider = "backend"
	cfg.Verify.BackendURL = backend.URL

	p, err := pipeline.NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	urls := make([]string, 4)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/page-%d", pages.URL, i)
	}

	b := NewBatchProcessor(p, 4, nil)
	results := b.ProcessURLs(context.Background(), urls)

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("url %d failed: %v", i, r.Err)
			continue
		}
		if r.Report == nil || r.Report.Status != model.StatusDone {
			t.Errorf("url %d: unexpected report %+v", i, r.Report)
		}
		if len(r.Report.Claims) != 2 {
			t.Errorf("url %d: claims = %d, want 2", i, len(r.Report.Claims))
		}
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# batch input
https://example.com/one

https://example.com/two
https://example.com/one
# trailing comment
https://example.com/three
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile: %v", err)
	}
	want := []string{"https://example.com/one", "https://example.com/two", "https://example.com/three"}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i, u := range want {
		if urls[i] != u {
			t.Errorf("url %d = %q, want %q", i, urls[i], u)
		}
	}
}

func TestReadURLsFromFile_Missing(t *testing.T) {
	if _, err := ReadURLsFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
