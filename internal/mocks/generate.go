// Package mocks provides mock implementations for testing the screening engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core port interfaces. The mocks are generated with go:generate and give
// tests a fluent API for setting up expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	jobs := mocks.NewMockJobStore(ctrl)
//	jobs.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mocks for the engine's collaborator ports from internal/core.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=core_mocks.go github.com/leadforge/leadscreen/internal/core CandidateSource,EnrichmentClient,ComplianceClient,DNCLookup,ResultSink,EventBus,JobStore,CancelFlag
