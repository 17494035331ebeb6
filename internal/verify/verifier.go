package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/textutil"
)

// DefaultTimeout bounds a single remote verification attempt
const DefaultTimeout = 15 * time.Second

// Verifier defines the interface for claim verifiers
type Verifier interface {
	// Name returns the verifier name
	Name() string

	// Verify checks the given claim sentences and returns one result per
	// claim, attributable by sentence text (order is not guaranteed).
	Verify(ctx context.Context, sentences []string) ([]model.VerificationResult, error)
}

// NewVerifier creates the remote verifier selected by configuration.
// Returns (nil, nil) when no remote provider is configured, in which case
// the orchestrator uses the local fallback directly.
func NewVerifier(cfg model.VerifyConfig) (Verifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "backend":
		return NewBackendVerifier(cfg)

	case "openai":
		return NewOpenAIVerifier(cfg)

	case "", "off", "local":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown verify provider: %s (supported: backend, openai, off)", cfg.Provider)
	}
}

// IndexResults builds a lookup map keyed by normalized sentence text.
// Duplicate sentences collapse to the last-seen result.
func IndexResults(results []model.VerificationResult) map[string]model.VerificationResult {
	index := make(map[string]model.VerificationResult, len(results))
	for _, r := range results {
		index[textutil.Normalize(r.Sentence)] = r
	}
	return index
}
