package database

import "testing"

func TestBuildPreFilterQuery(t *testing.T) {
	query, args := BuildPreFilterQuery(PreFilterOptions{
		CandidateTable: "leads",
		CacheTable:     "processed_leads",
		KeyColumn:      "address_norm",
		Columns:        []string{"lead_id", "address_norm"},
		Conditions:     []Condition{WhereCond("script_id", Equal, "script-1")},
		OrderBy:        "lead_id",
		Limit:          250,
		Offset:         500,
	})

	expected := `SELECT "lead_id", "address_norm" FROM "leads" WHERE ` +
		`"address_norm" IS NOT NULL AND "script_id" = $1 AND ` +
		`NOT EXISTS (SELECT 1 FROM "processed_leads" WHERE "processed_leads"."address_norm" = "leads"."address_norm")` +
		` ORDER BY "lead_id" ASC LIMIT $2 OFFSET $3`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(args))
	}
	if args[0] != "script-1" || args[1] != 250 || args[2] != 500 {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestBuildPreFilterCount(t *testing.T) {
	query, args := BuildPreFilterCount(PreFilterOptions{
		CandidateTable: "leads",
		CacheTable:     "processed_leads",
		KeyColumn:      "address_norm",
	})

	expected := `SELECT COUNT(*) FROM "leads" WHERE "address_norm" IS NOT NULL AND ` +
		`NOT EXISTS (SELECT 1 FROM "processed_leads" WHERE "processed_leads"."address_norm" = "leads"."address_norm")`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}
