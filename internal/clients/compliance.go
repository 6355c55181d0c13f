package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leadforge/leadscreen/internal/core"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// defaultComplianceBatchSize is the provider's documented cap on phone
// numbers per screening request.
const defaultComplianceBatchSize = 100

// ComplianceConfig captures the litigator screening provider's API surface.
type ComplianceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// MaxBatchSize overrides the provider's default request cap.
	MaxBatchSize int

	Client *http.Client
	Logger *slog.Logger
}

// ComplianceClient screens phone numbers against the provider's litigation
// list. Callers must keep each request within MaxBatchSize numbers.
type ComplianceClient struct {
	baseURL      string
	apiKey       string
	maxBatchSize int
	client       *http.Client
	logger       *slog.Logger
}

// NewComplianceClient builds a compliance client.
func NewComplianceClient(cfg ComplianceConfig) (*ComplianceClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("compliance base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("compliance api key is required")
	}

	maxBatch := cfg.MaxBatchSize
	if maxBatch < 1 {
		maxBatch = defaultComplianceBatchSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ComplianceClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       cfg.APIKey,
		maxBatchSize: maxBatch,
		client:       hc,
		logger:       logger,
	}, nil
}

var _ core.ComplianceClient = (*ComplianceClient)(nil)

// MaxBatchSize is the provider's cap on phone numbers per request.
func (c *ComplianceClient) MaxBatchSize() int {
	return c.maxBatchSize
}

type screenRequest struct {
	Phones []string `json:"phones"`
}

type screenResponse struct {
	Results []struct {
		Phone     string `json:"phone"`
		Litigator bool   `json:"litigator"`
	} `json:"results"`
}

// ScreenLitigators returns per-number litigator flags for the given phones.
// The input must not exceed MaxBatchSize.
func (c *ComplianceClient) ScreenLitigators(ctx context.Context, phones []string) (map[string]bool, error) {
	if len(phones) == 0 {
		return map[string]bool{}, nil
	}
	if len(phones) > c.maxBatchSize {
		return nil, apperrors.Validationf(
			"screening request of %d phones exceeds provider cap of %d",
			len(phones), c.maxBatchSize)
	}

	body, err := json.Marshal(screenRequest{Phones: phones})
	if err != nil {
		return nil, fmt.Errorf("encode screening request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/litigators/screen", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create screening request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError("compliance", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus("compliance", resp)
	}

	var decoded screenResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
		return nil, apperrors.Transient("decode screening response", decodeErr)
	}

	flags := make(map[string]bool, len(decoded.Results))
	for _, result := range decoded.Results {
		if result.Phone == "" {
			continue
		}
		flags[result.Phone] = result.Litigator
	}
	return flags, nil
}
