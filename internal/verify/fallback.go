package verify

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ppiankov/intercept/internal/model"
)

// incorrectRatio caps how many claims the local verifier may flag
const incorrectRatio = 0.3

// LocalVerifier is the randomized substitute used when the remote verifier
// is unreachable or non-conformant. It marks a small random subset of claims
// incorrect with mock corrections so the annotation path stays exercised.
// Randomness is drawn fresh from crypto/rand on every call.
type LocalVerifier struct{}

// NewLocalVerifier creates the fallback verifier
func NewLocalVerifier() *LocalVerifier {
	return &LocalVerifier{}
}

// Name returns the provider name
func (v *LocalVerifier) Name() string {
	return "local"
}

// Verify never fails and never blocks on the network
func (v *LocalVerifier) Verify(_ context.Context, sentences []string) ([]model.VerificationResult, error) {
	results := make([]model.VerificationResult, len(sentences))
	for i, s := range sentences {
		results[i] = model.VerificationResult{Sentence: s, Correct: true}
	}
	if len(sentences) == 0 {
		return results, nil
	}

	maxIncorrect := int(float64(len(sentences)) * incorrectRatio)
	if maxIncorrect < 1 {
		maxIncorrect = 1
	}

	count := int(randUint32() % uint32(maxIncorrect+1))
	for _, i := range pickIndices(len(sentences), count) {
		results[i].Correct = false
		results[i].Reason = "This fact may be inaccurate."
		results[i].Correction = mockCorrection(sentences[i])
		results[i].Source = fmt.Sprintf("https://example.com/source/%d", i)
	}

	return results, nil
}

// pickIndices selects k distinct indices from [0,n) uniformly at random,
// drawing candidates until enough distinct ones are collected.
func pickIndices(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	seen := make(map[int]bool, k)
	indices := make([]int, 0, k)
	for len(indices) < k {
		i := int(randUint32() % uint32(n))
		if !seen[i] {
			seen[i] = true
			indices = append(indices, i)
		}
	}
	return indices
}

// randUint32 reads from the system CSPRNG; crypto/rand never fails on
// supported platforms, and a broken entropy source is unrecoverable anyway.
func randUint32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return binary.BigEndian.Uint32(buf[:])
}

// mockCorrection derives a truncated correction from the claim's own leading words
func mockCorrection(sentence string) string {
	words := strings.Fields(sentence)
	if len(words) > 8 {
		words = words[:8]
	}
	return "Corrected fact: " + strings.Join(words, " ") + "..."
}
