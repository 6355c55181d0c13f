package model

import "time"

// ProgressSnapshot is one immutable view of a running job, published after
// every batch and on every status transition. Delivery is fire-and-forget;
// subscribers must tolerate gaps.
type ProgressSnapshot struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`

	Percent       float64 `json:"percent"`
	RowsProcessed int     `json:"rows_processed"`
	RowsTotal     int     `json:"rows_total"`
	BatchIndex    int     `json:"batch_index"`
	BatchTotal    int     `json:"batch_total"`

	Tallies Tallies `json:"tallies"`

	// Elapsed and ETA are pre-formatted for display ("3m 9s", "1h 12m").
	// ETA is empty until at least one row has been processed.
	Elapsed string `json:"elapsed"`
	ETA     string `json:"eta,omitempty"`

	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
