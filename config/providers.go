package config

import "time"

// EnrichmentConfig contains enrichment provider configuration. The provider
// receives person identity fields and returns contact candidates; its wire
// format is opaque, so the response is navigated with configurable JMESPath
// expressions.
type EnrichmentConfig struct {
	URL     string        `env:"URL"     envDefault:""`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// PhonesPath and EmailsPath are JMESPath expressions selecting candidate
	// phone numbers and email addresses from the provider response body.
	PhonesPath string `env:"PHONES_PATH" envDefault:"contacts[].phone"`
	EmailsPath string `env:"EMAILS_PATH" envDefault:"contacts[].email"`

	// OAuth2 client-credentials settings. When ClientID is empty the client
	// sends unauthenticated requests (useful against local fixtures).
	TokenURL     string `env:"TOKEN_URL"     envDefault:""`
	ClientID     string `env:"CLIENT_ID"     envDefault:""`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
}

// Sanitize applies guardrails to enrichment provider configuration values.
func (e *EnrichmentConfig) Sanitize() {
	if e.Timeout < time.Second {
		e.Timeout = time.Second
	}
	if e.PhonesPath == "" {
		e.PhonesPath = "contacts[].phone"
	}
	if e.EmailsPath == "" {
		e.EmailsPath = "contacts[].email"
	}
}

// ComplianceConfig contains litigator screening provider configuration.
type ComplianceConfig struct {
	URL     string        `env:"URL"     envDefault:""`
	APIKey  string        `env:"API_KEY" envDefault:""`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// MaxBatchSize is the provider's cap on phone numbers per request.
	MaxBatchSize int `env:"MAX_BATCH_SIZE" envDefault:"100"`
}

// Sanitize applies guardrails to compliance provider configuration values.
func (c *ComplianceConfig) Sanitize() {
	if c.Timeout < time.Second {
		c.Timeout = time.Second
	}
	if c.MaxBatchSize < 1 {
		c.MaxBatchSize = 1
	}
}
