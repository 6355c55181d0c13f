package config

// DBConfig contains PostgreSQL warehouse configuration. The warehouse holds
// the candidate lead tables, the processed-record cache tables, the job rows,
// and the results sink.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"leadscreen"`
	Password string `env:"PASSWORD" envDefault:"leadscreen"`
	Name     string `env:"NAME"     envDefault:"leadscreen"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// RunMigrationsOnStart applies pending schema migrations at startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration. Redis carries progress snapshots
// (pub/sub), the latest-snapshot cache for pollers, and the per-job
// cancellation flag.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// LookupConfig contains the embedded DNC lookup store configuration.
type LookupConfig struct {
	// Path is the SQLite database file holding the DNC number set.
	Path string `env:"PATH" envDefault:"dnc.db"`

	// Table is the table holding DNC numbers, one per row.
	Table string `env:"TABLE" envDefault:"dnc_numbers"`

	// MaxParams is the maximum number of bound parameters per statement.
	// SQLite's compile-time default is 999.
	MaxParams int `env:"MAX_PARAMS" envDefault:"999"`
}

// Sanitize applies guardrails to lookup store configuration values.
func (l *LookupConfig) Sanitize() {
	if l.MaxParams < 1 {
		l.MaxParams = 1
	}
	// SQLite historically rejects statements with more than 999 variables.
	if l.MaxParams > 999 {
		l.MaxParams = 999
	}
	if l.Table == "" {
		l.Table = "dnc_numbers"
	}
}
