package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intercept/internal/pipeline"
)

var healthBackend string

// healthCmd probes the verification backend
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the verification backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		if healthBackend != "" {
			cfg.Verify.BackendURL = healthBackend
		}
		if cfg.Verify.BackendURL == "" {
			return fmt.Errorf("no backend URL configured (use --backend or INTERCEPT_BACKEND_URL)")
		}

		p, err := pipeline.NewPipeline(cfg, newStatusNotifier(false))
		if err != nil {
			return err
		}

		if err := p.Health(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "✗ Backend offline: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✓ Backend online")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthBackend, "backend", "", "verification backend URL to probe")
}
