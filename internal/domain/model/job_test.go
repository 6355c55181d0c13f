package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusRunning},
		{JobStatusPending, JobStatusFailed},
		{JobStatusRunning, JobStatusUploading},
		{JobStatusRunning, JobStatusCancelled},
		{JobStatusRunning, JobStatusFailed},
		{JobStatusUploading, JobStatusCompleted},
		{JobStatusUploading, JobStatusFailed},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	forbidden := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusUploading},
		{JobStatusPending, JobStatusCompleted},
		{JobStatusPending, JobStatusCancelled},
		{JobStatusRunning, JobStatusCompleted},
		{JobStatusRunning, JobStatusPending},
		{JobStatusUploading, JobStatusRunning},
		{JobStatusUploading, JobStatusCancelled},
		{JobStatusCompleted, JobStatusRunning},
		{JobStatusFailed, JobStatusRunning},
		{JobStatusCancelled, JobStatusRunning},
		{JobStatusCompleted, JobStatusFailed},
	}
	for _, tr := range forbidden {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be forbidden", tr.from, tr.to)
	}
}

func TestJobTransitionTimestamps(t *testing.T) {
	job := NewJob("script-1", nil)
	require.Equal(t, JobStatusPending, job.Status)
	require.Nil(t, job.StartedAt)

	require.NoError(t, job.Transition(JobStatusRunning))
	require.NotNil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)

	require.NoError(t, job.Transition(JobStatusUploading))
	require.NoError(t, job.Transition(JobStatusCompleted))
	assert.NotNil(t, job.CompletedAt)

	// Terminal: any further transition is rejected.
	assert.Error(t, job.Transition(JobStatusRunning))
	assert.Error(t, job.Transition(JobStatusFailed))
}

func TestJobTransitionRejectsIllegalMove(t *testing.T) {
	job := NewJob("script-1", nil)
	err := job.Transition(JobStatusCompleted)
	require.Error(t, err)
	assert.Equal(t, JobStatusPending, job.Status, "status unchanged after rejected transition")
}

func TestJobCheckCounters(t *testing.T) {
	job := NewJob("script-1", nil)
	job.RowsTotal = 100
	job.RowsProcessed = 50
	job.Tallies = Tallies{Clean: 40, FlaggedLitigator: 6, FlaggedDNC: 4}
	assert.NoError(t, job.CheckCounters())

	job.RowsProcessed = 101
	assert.Error(t, job.CheckCounters(), "rows_processed above rows_total")

	job.RowsProcessed = 50
	job.Tallies.Clean = 41
	assert.Error(t, job.CheckCounters(), "tallies must sum to rows_processed")
}

func TestJobStatusUnmarshalText(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.UnmarshalText([]byte(" Running ")))
	assert.Equal(t, JobStatusRunning, s)

	assert.Error(t, s.UnmarshalText([]byte("paused")))
}

func TestRecordCategoryPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Category
	}{
		{
			name:   "clean",
			record: Record{Phones: []Phone{{Number: "5551234567"}}},
			want:   CategoryClean,
		},
		{
			name:   "dnc only",
			record: Record{Phones: []Phone{{Number: "5551234567", InDNC: true}}},
			want:   CategoryDNC,
		},
		{
			name:   "litigator only",
			record: Record{InLitigatorList: true},
			want:   CategoryLitigator,
		},
		{
			name: "litigator wins over dnc",
			record: Record{
				InLitigatorList: true,
				Phones:          []Phone{{Number: "5551234567", InDNC: true}},
			},
			want: CategoryLitigator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Category())
		})
	}
}

func TestBatchTallyRecordsSumsToSize(t *testing.T) {
	batch := &Batch{Index: 0, Records: []*Record{
		{LeadID: "1"},
		{LeadID: "2", InLitigatorList: true},
		{LeadID: "3", Phones: []Phone{{Number: "5550001111", InDNC: true}}},
		{LeadID: "4", InLitigatorList: true, Phones: []Phone{{Number: "5550002222", InDNC: true}}},
		{LeadID: "5", Invalid: true, InvalidReason: "missing normalized address"},
	}}

	tallies := batch.TallyRecords()
	assert.Equal(t, batch.Size(), tallies.Total())
	assert.Equal(t, 2, tallies.Clean) // invalid record counts clean
	assert.Equal(t, 2, tallies.FlaggedLitigator)
	assert.Equal(t, 1, tallies.FlaggedDNC)
}

func TestBatchPhoneKeysDeduplicates(t *testing.T) {
	batch := &Batch{Records: []*Record{
		{Phones: []Phone{{Number: "5550001111"}, {Number: "5550002222"}}},
		{Phones: []Phone{{Number: "5550001111"}, {Number: ""}}},
	}}

	assert.Equal(t, []string{"5550001111", "5550002222"}, batch.PhoneKeys())
}

func TestRecordValidate(t *testing.T) {
	r := &Record{LeadID: "1", AddressNorm: "123 main st"}
	r.Validate()
	assert.False(t, r.Invalid)

	r = &Record{LeadID: "", AddressNorm: "123 main st"}
	r.Validate()
	assert.True(t, r.Invalid)
	assert.Equal(t, "missing lead id", r.InvalidReason)

	r = &Record{LeadID: "1", AddressNorm: "  "}
	r.Validate()
	assert.True(t, r.Invalid)
}
