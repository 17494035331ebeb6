package model

import "time"

// ScanReport is the outcome of one scan session over a content block
type ScanReport struct {
	SourceURL string    `json:"source_url"`         // URL (or file://) that was scanned
	ScannedAt time.Time `json:"scanned_at"`         // When the scan occurred
	FetchMeta FetchMeta `json:"fetch_meta"`         // HTTP metadata (zero for local files)

	Status  Status `json:"status"`            // done or failed
	Message string `json:"message,omitempty"` // Human-readable failure message

	Sentences int                  `json:"sentences"`         // Total segmented sentences
	Claims    []Claim              `json:"claims"`            // Sentences classified as claims
	Results   []VerificationResult `json:"results,omitempty"` // One verdict per claim
	Sources   []Source             `json:"sources,omitempty"` // Citation links found in the block

	Verifier       string `json:"verifier,omitempty"` // Which verifier produced the results
	IncorrectCount int    `json:"incorrect_count"`    // Annotations tagged incorrect
}

// FetchMeta contains HTTP metadata from fetching the source page
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}
