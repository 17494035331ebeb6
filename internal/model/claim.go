package model

// Sentence is a single segmented sentence from the scanned content block
type Sentence struct {
	Text  string `json:"text"`  // The sentence as extracted (trimmed)
	Order int    `json:"order"` // Sentence index in document order (0-based)
}

// Claim represents a sentence classified as a verifiable factual statement
type Claim struct {
	Text      string `json:"text"`                // The claim text itself
	Heuristic string `json:"heuristic,omitempty"` // Which classification signal matched (e.g., "signal:number")
	Sentence  int    `json:"sentence,omitempty"`  // Sentence index in source (0-based)
}
