package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: warehouse, Redis, and lookup store configuration
//   - engine.go: batch engine, worker pool, retry, and breaker configuration
//   - providers.go: enrichment and compliance provider configuration
//   - observability.go: metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, relaxed guardrails).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Warehouse is the source/sink PostgreSQL configuration.
	Warehouse DBConfig `envPrefix:"DB_"`

	// Redis carries the event bus and cancellation flag configuration.
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Lookup is the embedded DNC lookup store configuration.
	Lookup LookupConfig `envPrefix:"LOOKUP_"`

	// Engine is the batch engine configuration.
	Engine EngineConfig

	// Enrichment provider configuration.
	Enrichment EnrichmentConfig `envPrefix:"ENRICHMENT_"`

	// Compliance provider configuration.
	Compliance ComplianceConfig `envPrefix:"COMPLIANCE_"`

	// Observability configuration.
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Engine.Sanitize()
	c.Enrichment.Sanitize()
	c.Compliance.Sanitize()
	c.Lookup.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in adjacent frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
