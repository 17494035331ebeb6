package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/intercept/internal/model"
)

// BackendVerifier sends claims to the Intercept verification backend.
// Contract: POST {"sentences": [...]} and a JSON response that is either a
// result array or an object with a "results" array. Anything else is a
// contract violation and fails the attempt.
type BackendVerifier struct {
	httpClient *http.Client
	url        string
}

// NewBackendVerifier creates a backend verifier for the configured endpoint
func NewBackendVerifier(cfg model.VerifyConfig) (*BackendVerifier, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend verifier requires a backend URL")
	}

	return &BackendVerifier{
		httpClient: &http.Client{},
		url:        cfg.BackendURL,
	}, nil
}

// Name returns the provider name
func (v *BackendVerifier) Name() string {
	return "backend"
}

type verifyRequest struct {
	Sentences []string `json:"sentences"`
}

// Verify posts all claim texts in one request. Single attempt, no retries;
// the caller falls back locally on any error.
func (v *BackendVerifier) Verify(ctx context.Context, sentences []string) ([]model.VerificationResult, error) {
	body, err := json.Marshal(verifyRequest{Sentences: sentences})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return parseResults(data)
}

// parseResults accepts the two conforming response shapes
func parseResults(data []byte) ([]model.VerificationResult, error) {
	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") {
		var results []model.VerificationResult
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("decode result array: %w", err)
		}
		return results, nil
	}

	var envelope struct {
		Results []model.VerificationResult `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("unexpected backend response shape")
	}
	return envelope.Results, nil
}
