// Package clients holds the HTTP adapters for the external screening
// providers. Clients classify failures into the shared error taxonomy and
// leave retrying to the caller.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// EnrichmentConfig captures the subset of the enrichment provider's API we
// depend on.
type EnrichmentConfig struct {
	BaseURL string
	Timeout time.Duration

	// PhonesPath and EmailsPath are JMESPath expressions extracting contact
	// candidates from the provider's response document.
	PhonesPath string
	EmailsPath string

	// OAuth2 client-credentials flow; all three set enables it.
	TokenURL     string
	ClientID     string
	ClientSecret string

	Client *http.Client
	Logger *slog.Logger
}

// EnrichmentClient calls the contact enrichment provider for one lead at a
// time and annotates the record in place.
type EnrichmentClient struct {
	baseURL string
	phones  jmespath.JMESPath
	emails  jmespath.JMESPath
	client  *http.Client
	logger  *slog.Logger
}

// NewEnrichmentClient builds an enrichment client. The JMESPath expressions
// are compiled up front so a bad path fails at startup, not mid-job.
func NewEnrichmentClient(cfg EnrichmentConfig) (*EnrichmentClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("enrichment base url is required")
	}

	phonesPath := cfg.PhonesPath
	if phonesPath == "" {
		phonesPath = "contacts[].phone"
	}
	emailsPath := cfg.EmailsPath
	if emailsPath == "" {
		emailsPath = "contacts[].email"
	}
	phones, err := jmespath.Compile(phonesPath)
	if err != nil {
		return nil, fmt.Errorf("compile phones path: %w", err)
	}
	emails, err := jmespath.Compile(emailsPath)
	if err != nil {
		return nil, fmt.Errorf("compile emails path: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	if cfg.TokenURL != "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		oauthCfg := clientcredentials.Config{
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		}
		hc = oauthCfg.Client(context.Background())
		hc.Timeout = timeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EnrichmentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		phones:  phones,
		emails:  emails,
		client:  hc,
		logger:  logger,
	}, nil
}

var _ core.EnrichmentClient = (*EnrichmentClient)(nil)

// enrichmentRequest is the identity document posted to the provider.
type enrichmentRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
}

// Enrich posts the record's identity and fills in phone and email candidates
// extracted from the response.
func (c *EnrichmentClient) Enrich(ctx context.Context, record *model.Record) error {
	if record == nil {
		return errors.New("record is required")
	}

	body, err := json.Marshal(enrichmentRequest{
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Address:   record.Address,
		City:      record.City,
		State:     record.State,
		Zip:       record.Zip,
	})
	if err != nil {
		return fmt.Errorf("encode enrichment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/enrich", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError("enrichment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus("enrichment", resp)
	}

	var doc any
	if decodeErr := json.NewDecoder(resp.Body).Decode(&doc); decodeErr != nil {
		return apperrors.Transient("decode enrichment response", decodeErr)
	}

	phones, err := c.extractStrings(c.phones, doc)
	if err != nil {
		return err
	}
	emails, err := c.extractStrings(c.emails, doc)
	if err != nil {
		return err
	}

	record.Phones = record.Phones[:0]
	for _, number := range phones {
		record.Phones = append(record.Phones, model.Phone{Number: number})
	}
	record.Emails = emails
	return nil
}

// extractStrings evaluates a JMESPath expression and keeps the non-empty
// string results. Missing paths yield an empty slice, not an error.
func (c *EnrichmentClient) extractStrings(path jmespath.JMESPath, doc any) ([]string, error) {
	raw, err := path.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("extract from enrichment response: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		if s, isString := raw.(string); isString && s != "" {
			return []string{s}, nil
		}
		return nil, nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, isString := item.(string); isString && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// classifyStatus maps provider HTTP status codes onto the error taxonomy:
// 429 is rate limited, 5xx is transient, anything else is permanent.
func classifyStatus(service string, resp *http.Response) error {
	snippet := readBodySnippet(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(fmt.Sprintf("%s rate limited: %s", service, snippet))
	case resp.StatusCode >= 500:
		return apperrors.Transientf("%s returned %d: %s", service, resp.StatusCode, snippet)
	default:
		return apperrors.Internalf("%s returned %d: %s", service, resp.StatusCode, snippet)
	}
}

// classifyTransportError treats network-level failures as transient; the
// caller's deadline shows up as a timeout.
func classifyTransportError(service string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(service + " request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Canceled(service + " request canceled")
	}
	return apperrors.Transient(service+" request failed", err)
}

func readBodySnippet(body io.Reader) string {
	const maxSnippet = 256
	b, err := io.ReadAll(io.LimitReader(body, maxSnippet))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
