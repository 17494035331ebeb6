package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/intercept/internal/annotate"
	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/verify"
)

const parisPage = `<html><body>
	<div class="answer">Paris is the capital of France. I really love this city. It has a population of 2.1 million.</div>
</body></html>`

func parse(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// scriptedVerifier returns fixed results for every call
type scriptedVerifier struct {
	results []model.VerificationResult
	started chan struct{} // closed when Verify is first entered
	block   chan struct{} // when set, Verify waits until closed
	once    sync.Once
}

func (s *scriptedVerifier) Name() string { return "scripted" }

func (s *scriptedVerifier) Verify(ctx context.Context, _ []string) ([]model.VerificationResult, error) {
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.results, nil
}

// recordingNotifier captures the status sequence
type recordingNotifier struct {
	mu       sync.Mutex
	statuses []model.Status
	done     bool
	failed   string
}

func (r *recordingNotifier) Status(s model.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recordingNotifier) Done(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
}

func (r *recordingNotifier) Failed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = msg
}

func countSpans(n *html.Node, class string) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "class" && attr.Val == class {
					count++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return count
}

func TestScan_EndToEnd(t *testing.T) {
	remote := &scriptedVerifier{results: []model.VerificationResult{
		{Sentence: "Paris is the capital of France.", Correct: true},
		{
			Sentence:   "It has a population of 2.1 million.",
			Correct:    false,
			Reason:     "Figure refers to the old census.",
			Correction: "About 2.0 million within city limits.",
			Source:     "https://example.com/s/1",
		},
	}}
	notifier := &recordingNotifier{}
	c := NewController(verify.NewOrchestrator(remote, time.Second, nil), notifier, 0)

	doc := parse(t, parisPage)
	report, err := c.Scan(context.Background(), doc, "https://example.com/page")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if report.Status != model.StatusDone {
		t.Errorf("status = %q", report.Status)
	}
	if report.Sentences != 3 {
		t.Errorf("sentences = %d, want 3", report.Sentences)
	}
	if len(report.Claims) != 2 {
		t.Fatalf("claims = %d, want 2 (subjective sentence must be dropped)", len(report.Claims))
	}
	if report.Verifier != "scripted" {
		t.Errorf("verifier = %q", report.Verifier)
	}
	if report.IncorrectCount != 1 {
		t.Errorf("incorrect = %d, want 1", report.IncorrectCount)
	}

	if n := countSpans(doc, annotate.ClassCorrect); n != 1 {
		t.Errorf("correct spans = %d, want 1", n)
	}
	if n := countSpans(doc, annotate.ClassIncorrect); n != 1 {
		t.Errorf("incorrect spans = %d, want 1", n)
	}

	if !notifier.done {
		t.Error("expected Done notification")
	}
	want := []model.Status{
		model.StatusLocating, model.StatusExtracting,
		model.StatusClassifying, model.StatusVerifying, model.StatusAnnotating,
	}
	if len(notifier.statuses) != len(want) {
		t.Fatalf("status sequence = %v", notifier.statuses)
	}
	for i, s := range want {
		if notifier.statuses[i] != s {
			t.Errorf("status %d = %q, want %q", i, notifier.statuses[i], s)
		}
	}
}

func TestScan_Rescan(t *testing.T) {
	remote := &scriptedVerifier{results: []model.VerificationResult{
		{Sentence: "Paris is the capital of France.", Correct: true},
		{Sentence: "It has a population of 2.1 million.", Correct: true},
	}}
	c := NewController(verify.NewOrchestrator(remote, time.Second, nil), nil, 0)
	doc := parse(t, parisPage)

	for i := 0; i < 3; i++ {
		if _, err := c.Scan(context.Background(), doc, ""); err != nil {
			t.Fatalf("scan %d failed: %v", i, err)
		}
		// Annotation count is stable across rescans, never accumulating
		if n := countSpans(doc, annotate.ClassCorrect); n != 2 {
			t.Fatalf("scan %d: correct spans = %d, want 2", i, n)
		}
	}
}

func TestScan_NoContentRoot(t *testing.T) {
	notifier := &recordingNotifier{}
	c := NewController(verify.NewOrchestrator(nil, time.Second, nil), notifier, 0)

	doc := parse(t, `<html><body><p>Tiny.</p></body></html>`)
	report, err := c.Scan(context.Background(), doc, "")
	if !errors.Is(err, ErrNoContentRoot) {
		t.Fatalf("expected ErrNoContentRoot, got %v", err)
	}
	if report.Status != model.StatusFailed {
		t.Errorf("status = %q", report.Status)
	}
	if notifier.failed == "" {
		t.Error("expected Failed notification")
	}
}

func TestScan_LocatorMissClearsStaleAnnotations(t *testing.T) {
	remote := &scriptedVerifier{results: []model.VerificationResult{
		{Sentence: "The GDP grew 3.2% in 2023.", Correct: false, Reason: "Revised figure."},
	}}
	c := NewController(verify.NewOrchestrator(remote, time.Second, nil), nil, 0)

	// Short enough that only the candidate marker qualifies it, never the
	// unmarked-div fallback
	doc := parse(t, `<html><body><div class="answer">The GDP grew 3.2% in 2023. Short tail.</div></body></html>`)
	if _, err := c.Scan(context.Background(), doc, ""); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if n := countSpans(doc, annotate.ClassIncorrect); n != 1 {
		t.Fatalf("expected 1 annotation after first scan, got %d", n)
	}

	// The page re-renders and the block loses its marker; the locator now
	// misses, and the failed re-scan must not leave the old spans behind
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" {
			for i, attr := range n.Attr {
				if attr.Key == "class" {
					n.Attr[i].Val = "aside"
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	_, err := c.Scan(context.Background(), doc, "")
	if !errors.Is(err, ErrNoContentRoot) {
		t.Fatalf("expected ErrNoContentRoot, got %v", err)
	}
	if n := countSpans(doc, annotate.ClassIncorrect) + countSpans(doc, annotate.ClassCorrect); n != 0 {
		t.Errorf("stale annotations survived the failed re-scan: %d spans", n)
	}
}

func TestScan_NoClaims(t *testing.T) {
	remote := &scriptedVerifier{}
	c := NewController(verify.NewOrchestrator(remote, time.Second, nil), nil, 0)

	doc := parse(t, `<html><body><div class="answer">Walking is nice on quiet mornings here.</div></body></html>`)
	report, err := c.Scan(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if report.Status != model.StatusDone {
		t.Errorf("status = %q", report.Status)
	}
	if len(report.Claims) != 0 {
		t.Errorf("claims = %d, want 0", len(report.Claims))
	}
	if report.IncorrectCount != 0 {
		t.Errorf("incorrect = %d", report.IncorrectCount)
	}
}

func TestScan_RejectsConcurrentTrigger(t *testing.T) {
	remote := &scriptedVerifier{
		started: make(chan struct{}),
		block:   make(chan struct{}),
		results: []model.VerificationResult{
			{Sentence: "Paris is the capital of France.", Correct: true},
			{Sentence: "It has a population of 2.1 million.", Correct: true},
		},
	}
	c := NewController(verify.NewOrchestrator(remote, 5*time.Second, nil), nil, 0)

	doc := parse(t, parisPage)
	first := make(chan error, 1)
	go func() {
		_, err := c.Scan(context.Background(), doc, "")
		first <- err
	}()

	// The first scan holds the session token while verification is in flight
	select {
	case <-remote.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first scan never reached verification")
	}

	if _, err := c.Scan(context.Background(), parse(t, parisPage), ""); !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("expected ErrScanInProgress, got %v", err)
	}

	close(remote.block)
	if err := <-first; err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	// Token released, a new scan goes through
	if _, err := c.Scan(context.Background(), parse(t, parisPage), ""); err != nil {
		t.Fatalf("scan after release failed: %v", err)
	}
}
