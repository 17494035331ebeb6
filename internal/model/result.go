package model

// VerificationResult is the verdict for one claim, produced by exactly one
// verifier (remote or local fallback) per scan.
type VerificationResult struct {
	Sentence   string `json:"sentence"`             // Source claim text, as sent for verification
	Correct    bool   `json:"correct"`              // Whether the claim checked out
	Reason     string `json:"reason,omitempty"`     // Why the claim was flagged
	Correction string `json:"correction,omitempty"` // Suggested corrected phrasing
	Source     string `json:"source,omitempty"`     // Supporting source URL
}

// Source is an outbound citation link harvested from the content block
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"` // Link anchor text
}
