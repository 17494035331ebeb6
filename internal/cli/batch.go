package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intercept/internal/pipeline"
	"github.com/ppiankov/intercept/internal/worker"
)

var (
	batchWorkers int
	batchRPS     float64
	batchBurst   int
	batchOutDir  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scan multiple URLs from a file (one per line)",
	Long: `Batch reads URLs from a file (one per line, # comments allowed) and
scans them concurrently with per-domain rate limiting.

Example:
  intercept batch urls.txt --workers 4 --out reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent scan workers")
	batchCmd.Flags().Float64Var(&batchRPS, "rps", 2, "requests per second per domain")
	batchCmd.Flags().IntVar(&batchBurst, "burst", 5, "rate limiter burst per domain")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "directory for per-URL JSON reports (optional)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = batchWorkers
	cfg.Concurrency.RequestsPerSecond = batchRPS
	cfg.Concurrency.Burst = batchBurst

	p, err := pipeline.NewPipeline(cfg, newStatusNotifier(false))
	if err != nil {
		return err
	}

	limiter := worker.NewLimiter(batchRPS, batchBurst)
	processor := worker.NewBatchProcessor(p, batchWorkers, limiter)

	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchOutDir != "" {
		if err := os.MkdirAll(batchOutDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	renderer := pipeline.NewRenderer(false)
	failed := 0
	flagged := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", res.URL, res.Err)
			continue
		}

		flagged += res.Report.IncorrectCount
		fmt.Printf("✓ %s: %d claims, %d flagged\n", res.URL, len(res.Report.Claims), res.Report.IncorrectCount)

		if batchOutDir != "" {
			path := filepath.Join(batchOutDir, fmt.Sprintf("report-%03d.json", i+1))
			if err := renderer.RenderJSON(res.Report, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: write %s: %v\n", path, err)
			}
		}
	}

	fmt.Printf("\nScanned %d URLs: %d ok, %d failed, %d claims flagged\n",
		len(results), len(results)-failed, failed, flagged)
	return nil
}
