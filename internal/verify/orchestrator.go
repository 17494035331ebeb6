package verify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/intercept/internal/model"
)

// Orchestrator runs verification with remote-first, local-fallback semantics.
// Remote failures (non-success status, timeout, malformed shape) are never
// surfaced as hard failures: the local pseudo-verifier substitutes and the
// failure is only logged.
type Orchestrator struct {
	remote   Verifier // nil when no remote provider is configured
	fallback *LocalVerifier
	timeout  time.Duration
	logw     io.Writer // warnings about recovered failures; nil silences them
}

// NewOrchestrator creates an orchestrator around the given remote verifier.
// remote may be nil, in which case every call uses the local fallback.
func NewOrchestrator(remote Verifier, timeout time.Duration, logw io.Writer) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		remote:   remote,
		fallback: NewLocalVerifier(),
		timeout:  timeout,
		logw:     logw,
	}
}

// Verify resolves one result per claim sentence and reports which verifier
// produced them. Empty input short-circuits with no network call. The
// returned results are unordered with respect to the input but attributable
// by sentence text.
func (o *Orchestrator) Verify(ctx context.Context, sentences []string) ([]model.VerificationResult, string) {
	if len(sentences) == 0 {
		return []model.VerificationResult{}, ""
	}

	if o.remote != nil {
		attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
		results, err := o.remote.Verify(attemptCtx, sentences)
		cancel()
		if err == nil {
			return results, o.remote.Name()
		}
		if o.logw != nil {
			fmt.Fprintf(o.logw, "Warning: %s verification failed, using local fallback: %v\n", o.remote.Name(), err)
		}
	}

	// The fallback is synchronous and cannot fail
	results, _ := o.fallback.Verify(ctx, sentences)
	return results, o.fallback.Name()
}
