package verify

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/intercept/internal/model"
)

// OpenAIVerifier verifies claims through OpenAI's Chat Completions API.
// The model is asked for the same JSON result array the backend contract
// uses, so response handling is shared with the backend verifier.
type OpenAIVerifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIVerifier creates an OpenAI-backed verifier
func NewOpenAIVerifier(cfg model.VerifyConfig) (*OpenAIVerifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	return &OpenAIVerifier{
		client: openai.NewClientWithConfig(clientConfig),
		model:  m,
	}, nil
}

// Name returns the provider name
func (v *OpenAIVerifier) Name() string {
	return "openai"
}

// Verify sends all claims in one completion request
func (v *OpenAIVerifier) Verify(ctx context.Context, sentences []string) ([]model.VerificationResult, error) {
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a fact-checking service. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(sentences),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	results, err := parseResults([]byte(content))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && len(sentences) > 0 {
		return nil, fmt.Errorf("empty verification response")
	}
	return results, nil
}

func buildPrompt(sentences []string) string {
	var b strings.Builder
	b.WriteString("Verify each sentence below for factual accuracy. Respond with a JSON array; ")
	b.WriteString(`each element must be {"sentence": <the sentence verbatim>, "correct": <bool>`)
	b.WriteString(`, "reason": <string, only if incorrect>, "correction": <string, only if incorrect>`)
	b.WriteString(`, "source": <url, only if incorrect>}.` + "\n\nSentences:\n")
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence, which chat models
// add even when told not to
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
