package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/intercept/internal/model"
)

// Renderer writes scan output as JSON, annotated HTML and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.ScanReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderHTML serializes the annotated document tree
func (r *Renderer) RenderHTML(doc *html.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := html.Render(f, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.ScanReport, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Intercept Scan Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", report.SourceURL)
	fmt.Fprintf(&b, "- **Scanned:** %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Status:** %s\n", report.Status)
	if report.Message != "" {
		fmt.Fprintf(&b, "- **Message:** %s\n", report.Message)
	}
	fmt.Fprintf(&b, "- **Sentences:** %d, **Claims:** %d, **Flagged:** %d\n", report.Sentences, len(report.Claims), report.IncorrectCount)
	if report.Verifier != "" {
		fmt.Fprintf(&b, "- **Verifier:** %s\n", report.Verifier)
	}

	if len(report.Claims) > 0 {
		fmt.Fprintf(&b, "\n## Claims\n\n")
		flagged := indexIncorrect(report.Results)
		for _, claim := range report.Claims {
			if res, bad := flagged[claim.Text]; bad {
				fmt.Fprintf(&b, "- ⚠ %s\n", claim.Text)
				if res.Reason != "" {
					fmt.Fprintf(&b, "  - Reason: %s\n", res.Reason)
				}
				if res.Correction != "" {
					fmt.Fprintf(&b, "  - Correction: %s\n", res.Correction)
				}
				if res.Source != "" {
					fmt.Fprintf(&b, "  - Source: %s\n", res.Source)
				}
			} else {
				fmt.Fprintf(&b, "- ✓ %s\n", claim.Text)
			}
		}
	}

	if len(report.Sources) > 0 {
		fmt.Fprintf(&b, "\n## Sources\n\n")
		for _, s := range report.Sources {
			fmt.Fprintf(&b, "- [%s](%s)\n", s.Title, s.URL)
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\nGenerated by Intercept. Verdicts are heuristic, not ground truth.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// RenderSummary prints a one-screen summary to stdout
func (r *Renderer) RenderSummary(report *model.ScanReport) {
	fmt.Printf("Scanned: %s\n", report.SourceURL)
	if report.Status == model.StatusFailed {
		fmt.Printf("✗ Scan failed: %s\n", report.Message)
		return
	}

	fmt.Printf("Sentences: %d | Claims: %d | Verifier: %s\n", report.Sentences, len(report.Claims), orNone(report.Verifier))
	if report.IncorrectCount > 0 {
		fmt.Printf("⚠ %d potential inaccuracies detected\n", report.IncorrectCount)
	} else {
		fmt.Printf("✓ No inaccuracies detected\n")
	}
	if len(report.Sources) > 0 {
		fmt.Printf("Sources cited: %d\n", len(report.Sources))
	}
}

func indexIncorrect(results []model.VerificationResult) map[string]model.VerificationResult {
	flagged := make(map[string]model.VerificationResult)
	for _, res := range results {
		if !res.Correct {
			flagged[res.Sentence] = res
		}
	}
	return flagged
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
