package model

import "strings"

// Category is the compliance bucket a record lands in after screening.
type Category string

const (
	// CategoryClean indicates no compliance flags.
	CategoryClean Category = "clean"
	// CategoryLitigator indicates the person appears on the litigator list.
	CategoryLitigator Category = "litigator"
	// CategoryDNC indicates at least one phone appears on the DNC list.
	CategoryDNC Category = "dnc"
)

// Phone is one enriched phone candidate for a record.
type Phone struct {
	Number string `json:"number"`
	InDNC  bool   `json:"in_dnc"`
}

// Record is one lead flowing through the pipeline. It is created from a
// source row and annotated in place by each stage; stages run sequentially
// per batch so a record is never mutated concurrently.
type Record struct {
	LeadID      string `json:"lead_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	AddressNorm string `json:"address_norm"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`

	// Enrichment results.
	Phones []Phone  `json:"phones,omitempty"`
	Emails []string `json:"emails,omitempty"`

	// Compliance flags.
	InLitigatorList bool `json:"in_litigator_list"`

	// Per-record validation outcome. Invalid records stay in the batch and
	// are persisted with their reason; they never fail the batch.
	Invalid       bool   `json:"invalid,omitempty"`
	InvalidReason string `json:"invalid_reason,omitempty"`
}

// Validate checks the source fields the pipeline depends on and marks the
// record invalid in place when they are malformed.
func (r *Record) Validate() {
	switch {
	case strings.TrimSpace(r.LeadID) == "":
		r.Invalid = true
		r.InvalidReason = "missing lead id"
	case strings.TrimSpace(r.AddressNorm) == "":
		r.Invalid = true
		r.InvalidReason = "missing normalized address"
	}
}

// AnyPhoneInDNC reports whether any enriched phone is on the DNC list.
func (r *Record) AnyPhoneInDNC() bool {
	for _, p := range r.Phones {
		if p.InDNC {
			return true
		}
	}
	return false
}

// Category buckets the record for the job tallies. Litigator takes
// precedence over DNC: the buckets are mutually exclusive so they always sum
// to the processed row count.
func (r *Record) Category() Category {
	switch {
	case r.InLitigatorList:
		return CategoryLitigator
	case r.AnyPhoneInDNC():
		return CategoryDNC
	default:
		return CategoryClean
	}
}

// Batch is an ordered slice of records processed together through the
// pipeline stages. The orchestrator owns a batch for its lifetime and
// discards it once its records are merged into the accumulator.
type Batch struct {
	Index   int
	Records []*Record
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int {
	return len(b.Records)
}

// PhoneKeys returns the deduplicated set of phone numbers across the batch,
// in first-seen order.
func (b *Batch) PhoneKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range b.Records {
		for _, p := range r.Phones {
			if p.Number == "" {
				continue
			}
			if _, ok := seen[p.Number]; ok {
				continue
			}
			seen[p.Number] = struct{}{}
			keys = append(keys, p.Number)
		}
	}
	return keys
}

// TallyRecords buckets every valid record and returns the batch tallies.
// Invalid records are counted as processed but categorised clean; their
// invalid flag survives into the sink for inspection.
func (b *Batch) TallyRecords() Tallies {
	var t Tallies
	for _, r := range b.Records {
		switch r.Category() {
		case CategoryLitigator:
			t.FlaggedLitigator++
		case CategoryDNC:
			t.FlaggedDNC++
		default:
			t.Clean++
		}
	}
	return t
}
