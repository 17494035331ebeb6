// Package classify decides which sentences carry verifiable factual claims.
package classify

import (
	"regexp"
	"strings"

	"github.com/ppiankov/intercept/internal/model"
)

// minClaimLength filters out headings and fragments too short to carry a claim
const minClaimLength = 8

// signal pairs a heuristic name with its pattern, checked in order
type signal struct {
	name string
	re   *regexp.Regexp
}

var positiveSignals = []signal{
	{"number", regexp.MustCompile(`\b\d{1,4}(,\d{3})*(\.\d+)?\b`)},
	{"year", regexp.MustCompile(`\b(18|19|20)\d{2}\b`)},
	{"percent", regexp.MustCompile(`(?i)%|percent`)},
	{"currency", regexp.MustCompile(`[$£€¥]`)},
	{"unit", regexp.MustCompile(`(?i)\b(km|miles|kg|lbs|meters|feet)\b|°c|°f`)},
	{"citation", regexp.MustCompile(`(?i)https?://|\[\d+\]`)},
	{"source-cue", regexp.MustCompile(`(?i)according to|reported by|study|survey|data shows|research|found that|released`)},
	// A run of capitalized words, or a capitalized word past the sentence
	// start ("the capital of France"), naively taken as a proper noun.
	{"proper-noun", regexp.MustCompile(`\b([A-Z][a-z]+\s+){1,3}[A-Z][a-z]+\b|\p{Ll}\s+[A-Z][a-z]+`)},
}

// Negative cues override every positive signal: hedged or subjective
// sentences are never claims.
var (
	hedgeRe      = regexp.MustCompile(`(?i)\b(in my opinion|i think|i believe|may be|might|could|should|would|perhaps|possibly|seems like|imo)\b`)
	subjectiveRe = regexp.MustCompile(`(?i)\b(beautiful|great|awful|terrible|fantastic|boring|amazing|interesting|love|hate)\b`)
)

// Classifier is a heuristic filter for factual claims, not a ground-truth
// oracle. False positives and negatives are expected.
type Classifier struct{}

// NewClassifier creates a new claim classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify reports whether the sentence is a verifiable factual claim and,
// when it is, which signal matched. Pure function of the sentence text.
func (c *Classifier) Classify(sentence string) (heuristic string, ok bool) {
	s := strings.TrimSpace(sentence)
	if len(s) < minClaimLength {
		return "", false
	}

	if hedgeRe.MatchString(s) || subjectiveRe.MatchString(s) {
		return "", false
	}

	for _, sig := range positiveSignals {
		if sig.re.MatchString(s) {
			return "signal:" + sig.name, true
		}
	}

	return "", false
}

// IsClaim is the boolean form of Classify
func (c *Classifier) IsClaim(sentence string) bool {
	_, ok := c.Classify(sentence)
	return ok
}

// Filter returns the claims among the given sentences, preserving order
func (c *Classifier) Filter(sentences []model.Sentence) []model.Claim {
	var claims []model.Claim
	for _, sentence := range sentences {
		if heuristic, ok := c.Classify(sentence.Text); ok {
			claims = append(claims, model.Claim{
				Text:      sentence.Text,
				Heuristic: heuristic,
				Sentence:  sentence.Order,
			})
		}
	}
	return claims
}
