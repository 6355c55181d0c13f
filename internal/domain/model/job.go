// Package model defines the core data types used throughout the lead
// screening engine.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a screening job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusPending indicates a job is created but not yet started.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates a job is processing batches.
	JobStatusRunning JobStatus = "running"
	// JobStatusUploading indicates a job is performing the final bulk write.
	JobStatusUploading JobStatus = "uploading"
	// JobStatusCompleted indicates a job finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job failed to complete.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates a job was cancelled by an operator.
	JobStatusCancelled JobStatus = "cancelled"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusUploading,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal returns true once the status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// CanTransitionTo reports whether the status machine permits moving from s
// to next. Terminal statuses reject every transition.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning || next == JobStatusFailed
	case JobStatusRunning:
		return next == JobStatusUploading || next == JobStatusCancelled || next == JobStatusFailed
	case JobStatusUploading:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// Tallies holds the per-category record counts for a job. A record lands in
// exactly one bucket; litigator takes precedence over DNC so the three
// buckets always sum to rows processed.
type Tallies struct {
	Clean            int `json:"clean"             db:"clean"`
	FlaggedLitigator int `json:"flagged_litigator" db:"flagged_litigator"`
	FlaggedDNC       int `json:"flagged_dnc"       db:"flagged_dnc"`
}

// Total returns the sum of all tally buckets.
func (t Tallies) Total() int {
	return t.Clean + t.FlaggedLitigator + t.FlaggedDNC
}

// Add accumulates another tally set into t.
func (t *Tallies) Add(other Tallies) {
	t.Clean += other.Clean
	t.FlaggedLitigator += other.FlaggedLitigator
	t.FlaggedDNC += other.FlaggedDNC
}

// Job represents a screening run over one source script.
type Job struct {
	ID       string `json:"id"                  db:"id"`
	ScriptID string `json:"script_id"           db:"script_id"`
	RowLimit *int   `json:"row_limit,omitempty" db:"row_limit"`

	Status JobStatus `json:"status" db:"status"`

	RowsTotal     int `json:"rows_total"     db:"rows_total"`
	RowsProcessed int `json:"rows_processed" db:"rows_processed"`
	BatchIndex    int `json:"batch_index"    db:"batch_index"`
	BatchTotal    int `json:"batch_total"    db:"batch_total"`

	Tallies Tallies `json:"tallies"`

	StartedAt   *time.Time `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	LastError   *string    `json:"last_error,omitempty"   db:"last_error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewJob creates a pending job for the given script.
func NewJob(scriptID string, rowLimit *int) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.NewString(),
		ScriptID:  scriptID,
		RowLimit:  rowLimit,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the job to the next status, enforcing the state machine.
func (j *Job) Transition(next JobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal job transition %s -> %s", j.Status, next)
	}
	now := time.Now().UTC()
	j.Status = next
	j.UpdatedAt = now
	switch next {
	case JobStatusRunning:
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		j.CompletedAt = &now
	}
	return nil
}

// CheckCounters validates the job's aggregate counter invariants.
func (j *Job) CheckCounters() error {
	if j.RowsTotal > 0 && j.RowsProcessed > j.RowsTotal {
		return fmt.Errorf("rows_processed %d exceeds rows_total %d", j.RowsProcessed, j.RowsTotal)
	}
	if got := j.Tallies.Total(); got != j.RowsProcessed {
		return fmt.Errorf("tallies sum %d does not match rows_processed %d", got, j.RowsProcessed)
	}
	return nil
}

// ErrJobNotFound is returned when a job does not exist.
var ErrJobNotFound = errors.New("job not found")
