// Package session drives one scan over a content tree: locate, extract,
// segment, classify, verify, annotate, report.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/intercept/internal/annotate"
	"github.com/ppiankov/intercept/internal/classify"
	"github.com/ppiankov/intercept/internal/locate"
	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/segment"
	"github.com/ppiankov/intercept/internal/verify"
)

var (
	// ErrNoContentRoot means no qualifying content block exists on the page
	ErrNoContentRoot = errors.New("no content root found")

	// ErrEmptyContent means the located block has no extractable text
	ErrEmptyContent = errors.New("content block is empty")

	// ErrScanInProgress rejects a trigger while another scan is live
	ErrScanInProgress = errors.New("scan already in progress")
)

// Notifier receives status updates for the visible indicator
type Notifier interface {
	Status(s model.Status)
	Done(incorrect int)
	Failed(msg string)
}

// NopNotifier discards all updates
type NopNotifier struct{}

func (NopNotifier) Status(model.Status) {}
func (NopNotifier) Done(int)            {}
func (NopNotifier) Failed(string)       {}

// Controller owns the scan lifecycle. One logical session is active at a
// time: a second trigger while a session token is live is rejected rather
// than racing, and tree mutation is serialized so a new scan can never start
// annotating mid-traversal of a previous one.
type Controller struct {
	classifier *classify.Classifier
	orch       *verify.Orchestrator
	notifier   Notifier
	minText    int

	running atomic.Bool // session token
	treeMu  sync.Mutex  // guards clear+annotate on the tree
}

// NewController creates a session controller
func NewController(orch *verify.Orchestrator, notifier Notifier, minText int) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if minText <= 0 {
		minText = locate.DefaultMinTextLength
	}
	return &Controller{
		classifier: classify.NewClassifier(),
		orch:       orch,
		notifier:   notifier,
		minText:    minText,
	}
}

// Scan runs one full scan over the parsed document. Terminal failures
// (ErrNoContentRoot, ErrEmptyContent) leave the tree cleared but
// unannotated; verification failures are recovered internally and never
// fail the scan. Annotation only begins after verification fully resolves.
func (c *Controller) Scan(ctx context.Context, doc *html.Node, sourceURL string) (*model.ScanReport, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer c.running.Store(false)

	report := &model.ScanReport{
		SourceURL: sourceURL,
		ScannedAt: time.Now().UTC(),
		Claims:    []model.Claim{},
	}

	c.notifier.Status(model.StatusLocating)
	root := locate.Root(doc, c.minText)
	if root == nil {
		// No root to scope the clear to, but stale annotations from an
		// earlier scan may sit anywhere in the tree
		return c.fail(report, doc, ErrNoContentRoot)
	}

	c.notifier.Status(model.StatusExtracting)
	text := locate.Text(root)
	if text == "" {
		return c.fail(report, root, ErrEmptyContent)
	}

	c.notifier.Status(model.StatusClassifying)
	sentences := segment.Split(text)
	claims := c.classifier.Filter(sentences)
	report.Sentences = len(sentences)
	report.Claims = claims
	report.Sources = locate.Sources(root)

	// Zero claims is not a failure: verification short-circuits and the
	// annotation pass still runs its clear phase.
	c.notifier.Status(model.StatusVerifying)
	texts := make([]string, len(claims))
	for i, claim := range claims {
		texts[i] = claim.Text
	}
	results, verifierName := c.orch.Verify(ctx, texts)
	report.Results = results
	report.Verifier = verifierName

	c.notifier.Status(model.StatusAnnotating)
	c.treeMu.Lock()
	annotate.Clear(root)
	incorrect := annotate.Apply(root, claims, verify.IndexResults(results))
	c.treeMu.Unlock()

	report.IncorrectCount = incorrect
	report.Status = model.StatusDone
	c.notifier.Done(incorrect)

	return report, nil
}

// fail marks the session failed, clearing any prior annotations so no
// partial state stays visible.
func (c *Controller) fail(report *model.ScanReport, root *html.Node, err error) (*model.ScanReport, error) {
	if root != nil {
		c.treeMu.Lock()
		annotate.Clear(root)
		c.treeMu.Unlock()
	}
	report.Status = model.StatusFailed
	report.Message = err.Error()
	c.notifier.Failed(err.Error())
	return report, err
}
