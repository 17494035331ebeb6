package model

// Status tracks the phase of a scan session
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLocating    Status = "locating"
	StatusExtracting  Status = "extracting"
	StatusClassifying Status = "classifying"
	StatusVerifying   Status = "verifying"
	StatusAnnotating  Status = "annotating"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

// Terminal reports whether the status is an end state
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}
