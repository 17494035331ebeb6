package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/pipeline"
)

var (
	outJSON       string
	outHTML       string
	outMD         string
	scanTimeout   time.Duration
	verifyTimeout time.Duration
	provider      string
	backendURL    string
	openaiModel   string
	userAgent     string
	maxBytes      int64
	minText       int
	noCache       bool
	noRobots      bool
	noFooter      bool
	insecureTLS   bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url|file>",
	Short: "Scan a page and annotate its answer block with accuracy markers",
	Long: `Scan fetches a page (or reads a local HTML file), locates the answer
block, classifies factual claims, verifies them and writes the annotated
document plus a report.

Example:
  intercept scan https://example.com/answer --html annotated.html
  intercept scan answer.html --json report.json --md report.md
  intercept scan https://example.com --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	scanCmd.Flags().StringVar(&outHTML, "html", "", "annotated HTML output path (optional)")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scanCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// HTTP flags
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "Intercept/0.1 (+https://github.com/ppiankov/intercept)", "HTTP User-Agent")
	scanCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	scanCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	scanCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")

	// Engine flags
	scanCmd.Flags().IntVar(&minText, "min-text", 20, "minimum text length for a content root candidate")
	scanCmd.Flags().StringVar(&provider, "provider", "backend", "verify provider (backend, openai, off)")
	scanCmd.Flags().StringVar(&backendURL, "backend", "", "verification backend URL (for provider=backend)")
	scanCmd.Flags().DurationVar(&verifyTimeout, "verify-timeout", 15*time.Second, "remote verification deadline")
	scanCmd.Flags().StringVar(&openaiModel, "openai-model", "", "model name for provider=openai")
}

func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = scanTimeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Locate.MinTextLength = minText
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.Verify.Provider = provider
	cfg.Verify.Timeout = verifyTimeout
	switch provider {
	case "backend":
		if backendURL == "" {
			backendURL = os.Getenv("INTERCEPT_BACKEND_URL")
		}
		if backendURL == "" {
			// No backend configured: the local pseudo-verifier takes over
			if verbose {
				fmt.Fprintln(os.Stderr, "No backend URL configured, using local verifier")
			}
			cfg.Verify.Provider = "off"
		}
		cfg.Verify.BackendURL = backendURL
	case "openai":
		cfg.Verify.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Verify.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		cfg.Verify.Model = openaiModel
	}

	return cfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, newStatusNotifier(verbose))
	if err != nil {
		return err
	}

	var result *pipeline.ScanResult
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		result, err = p.ScanURL(ctx, target)
	} else {
		result, err = p.ScanFile(ctx, target)
	}
	if err != nil {
		if result != nil && result.Report != nil {
			// Terminal scan failures still produce a report
			p.RenderSummary(result.Report)
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Segmented %d sentences\n", result.Report.Sentences)
		fmt.Fprintf(os.Stderr, "✓ Classified %d claims\n", len(result.Report.Claims))
		fmt.Fprintf(os.Stderr, "✓ Verified via %s\n", result.Report.Verifier)
		fmt.Fprintln(os.Stderr)
	}

	return p.RenderReport(result, outJSON, outHTML, outMD, verbose)
}

// statusNotifier mirrors the scan phases to stderr, standing in for the
// extension's status indicator dot.
type statusNotifier struct {
	verbose bool
}

func newStatusNotifier(verbose bool) *statusNotifier {
	return &statusNotifier{verbose: verbose}
}

func (n *statusNotifier) Status(s model.Status) {
	if n.verbose {
		fmt.Fprintf(os.Stderr, "⚙️  %s...\n", s)
	}
}

func (n *statusNotifier) Done(incorrect int) {
	if n.verbose {
		if incorrect > 0 {
			fmt.Fprintf(os.Stderr, "✗ %d potential inaccuracies\n", incorrect)
		} else {
			fmt.Fprintln(os.Stderr, "✓ all clear")
		}
	}
}

func (n *statusNotifier) Failed(msg string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
}
