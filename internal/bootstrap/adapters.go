package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/leadforge/leadscreen/config"
	"github.com/leadforge/leadscreen/internal/clients"
	"github.com/leadforge/leadscreen/internal/data"
	"github.com/leadforge/leadscreen/internal/observability/statsd"
)

// AdapterDeps carries the infrastructure handles adapters are built on.
type AdapterDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	LookupDB    *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Adapters bundles the concrete implementations behind the core ports.
type Adapters struct {
	Jobs       *data.JobRepo
	Source     *data.WarehouseRepo
	Lookup     *data.LookupRepo
	Sink       *data.ResultSinkRepo
	Bus        *data.RedisEventBus
	Enrichment *clients.EnrichmentClient
	Compliance *clients.ComplianceClient
	Metrics    statsd.Sink

	statsdClient *statsd.Client
}

// BuildAdapters constructs every adapter from configuration and shared
// infrastructure connections.
func BuildAdapters(deps AdapterDeps) (*Adapters, error) {
	cfg := deps.Config
	logger := deps.Logger

	metrics, statsdClient, err := buildMetricsSink(cfg.Observability.Metrics, logger)
	if err != nil {
		return nil, err
	}

	enrichment, err := clients.NewEnrichmentClient(clients.EnrichmentConfig{
		BaseURL:      cfg.Enrichment.URL,
		Timeout:      cfg.Enrichment.Timeout,
		PhonesPath:   cfg.Enrichment.PhonesPath,
		EmailsPath:   cfg.Enrichment.EmailsPath,
		TokenURL:     cfg.Enrichment.TokenURL,
		ClientID:     cfg.Enrichment.ClientID,
		ClientSecret: cfg.Enrichment.ClientSecret,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build enrichment client: %w", err)
	}

	compliance, err := clients.NewComplianceClient(clients.ComplianceConfig{
		BaseURL:      cfg.Compliance.URL,
		APIKey:       cfg.Compliance.APIKey,
		Timeout:      cfg.Compliance.Timeout,
		MaxBatchSize: cfg.Compliance.MaxBatchSize,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build compliance client: %w", err)
	}

	return &Adapters{
		Jobs: data.NewJobRepo(deps.DB, data.JobRepoConfig{Logger: logger}),
		Source: data.NewWarehouseRepo(deps.DB, data.WarehouseRepoConfig{
			CandidateTable: cfg.Engine.CandidateTable,
			CacheTable:     cfg.Engine.ProcessedCacheTable,
			JoinKey:        cfg.Engine.JoinKey,
			Logger:         logger,
		}),
		Lookup: data.NewLookupRepo(deps.LookupDB, data.LookupRepoConfig{
			Table:     cfg.Lookup.Table,
			MaxParams: cfg.Lookup.MaxParams,
			Logger:    logger,
		}),
		Sink: data.NewResultSinkRepo(deps.DB, data.ResultSinkRepoConfig{
			CacheTable:     cfg.Engine.ProcessedCacheTable,
			CacheKeyColumn: cfg.Engine.JoinKey,
			Logger:         logger,
		}),
		Bus:          data.NewRedisEventBus(deps.RedisClient),
		Enrichment:   enrichment,
		Compliance:   compliance,
		Metrics:      metrics,
		statsdClient: statsdClient,
	}, nil
}

// Close releases adapter-owned resources. Infrastructure connections passed
// in through AdapterDeps are owned by the caller.
func (a *Adapters) Close() error {
	if a.statsdClient != nil {
		return a.statsdClient.Close()
	}
	return nil
}

func buildMetricsSink(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (statsd.Sink, *statsd.Client, error) {
	if !cfg.IsEnabled() {
		return statsd.Noop{}, nil, nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  "leadscreen",
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build statsd client: %w", err)
	}
	return client, client, nil
}
