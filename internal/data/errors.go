package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Job repository sentinels.
	ErrJobIDRequired    = errors.New("job id is required")
	ErrScriptIDRequired = errors.New("script id is required")

	// Result sink sentinels.
	ErrNoRecords = errors.New("no records to insert")

	// Lookup store sentinels.
	ErrLookupNotConfigured = errors.New("dnc lookup store not configured")
)
