package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/intercept/internal/cache"
	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/session"
	"github.com/ppiankov/intercept/internal/verify"
)

// Pipeline orchestrates a complete page scan: fetch, parse, locate,
// classify, verify, annotate, render.
type Pipeline struct {
	fetcher  *Fetcher
	orch     *verify.Orchestrator
	notifier session.Notifier
	renderer *Renderer
	config   *model.Config
}

// NewPipeline creates a pipeline from the given configuration
func NewPipeline(cfg *model.Config, notifier session.Notifier) (*Pipeline, error) {
	remote, err := verify.NewVerifier(cfg.Verify)
	if err != nil {
		return nil, fmt.Errorf("configure verifier: %w", err)
	}

	return &Pipeline{
		fetcher:  NewFetcher(cfg.HTTP, newStore(cfg.Cache), cfg.Cache.DiskTTL),
		orch:     verify.NewOrchestrator(remote, cfg.Verify.Timeout, os.Stderr),
		notifier: notifier,
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
	}, nil
}

// newSession creates the controller for one document scan. Each document is
// its own session: the controller's trigger guard protects a single tree
// against overlapping scans, not unrelated documents against each other, so
// batch workers scanning different pages must not share one.
func (p *Pipeline) newSession() *session.Controller {
	return session.NewController(p.orch, p.notifier, p.config.Locate.MinTextLength)
}

// newStore builds the fetch cache, or nil when caching is disabled
func newStore(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}

	dir := cfg.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// No usable disk location; memory still helps within a batch
			return cache.NewMemoryCache(cfg.MemoryTTL, cfg.MemoryTTL)
		}
		dir = filepath.Join(home, ".intercept", "cache")
	}

	return cache.NewLayeredCache(cfg.MemoryTTL, dir, cfg.DiskTTL)
}

// ScanResult pairs the scan report with the annotated document tree
type ScanResult struct {
	Report *model.ScanReport
	Doc    *html.Node
}

// ScanURL fetches and scans a single page
func (p *Pipeline) ScanURL(ctx context.Context, rawURL string) (*ScanResult, error) {
	fetched, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(fetched.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	report, err := p.newSession().Scan(ctx, doc, fetched.FinalURL)
	if report != nil {
		report.FetchMeta = fetched.Meta
	}
	if err != nil {
		return &ScanResult{Report: report, Doc: doc}, fmt.Errorf("scan: %w", err)
	}

	return &ScanResult{Report: report, Doc: doc}, nil
}

// ScanFile scans a local HTML file
func (p *Pipeline) ScanFile(ctx context.Context, path string) (*ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	report, err := p.newSession().Scan(ctx, doc, "file://"+abs)
	if err != nil {
		return &ScanResult{Report: report, Doc: doc}, fmt.Errorf("scan: %w", err)
	}

	return &ScanResult{Report: report, Doc: doc}, nil
}

// Health probes the verification backend's health endpoint
func (p *Pipeline) Health(ctx context.Context) error {
	base := strings.TrimSuffix(p.config.Verify.BackendURL, "/verify")
	if base == "" {
		return fmt.Errorf("no backend URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.fetcher.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// RenderSummary prints the stdout summary for a report
func (p *Pipeline) RenderSummary(report *model.ScanReport) {
	p.renderer.RenderSummary(report)
}

// RenderReport renders the report and annotated document to the requested outputs
func (p *Pipeline) RenderReport(result *ScanResult, jsonPath, htmlPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result.Report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if htmlPath != "" {
		if err := p.renderer.RenderHTML(result.Doc, htmlPath); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote annotated HTML: %s\n", htmlPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(result.Report)
	return nil
}
