package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

func complianceServer(t *testing.T, litigators map[string]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/litigators/screen", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-Api-Key"))

		var req screenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var resp screenResponse
		for _, phone := range req.Phones {
			resp.Results = append(resp.Results, struct {
				Phone     string `json:"phone"`
				Litigator bool   `json:"litigator"`
			}{Phone: phone, Litigator: litigators[phone]})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplianceClient_ScreenLitigators(t *testing.T) {
	srv := complianceServer(t, map[string]bool{"15125550101": true})

	client, err := NewComplianceClient(ComplianceConfig{
		BaseURL: srv.URL,
		APIKey:  "secret-key",
	})
	require.NoError(t, err)

	flags, err := client.ScreenLitigators(context.Background(), []string{
		"15125550100", "15125550101",
	})
	require.NoError(t, err)

	assert.False(t, flags["15125550100"])
	assert.True(t, flags["15125550101"])
}

func TestComplianceClient_EmptyInput(t *testing.T) {
	client, err := NewComplianceClient(ComplianceConfig{
		BaseURL: "http://localhost:1",
		APIKey:  "secret-key",
	})
	require.NoError(t, err)

	flags, err := client.ScreenLitigators(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestComplianceClient_RejectsOversizedBatch(t *testing.T) {
	client, err := NewComplianceClient(ComplianceConfig{
		BaseURL:      "http://localhost:1",
		APIKey:       "secret-key",
		MaxBatchSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, client.MaxBatchSize())

	phones := make([]string, 3)
	for i := range phones {
		phones[i] = fmt.Sprintf("1512555010%d", i)
	}

	_, err = client.ScreenLitigators(context.Background(), phones)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestComplianceClient_ErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client, err := NewComplianceClient(ComplianceConfig{
		BaseURL: srv.URL,
		APIKey:  "secret-key",
	})
	require.NoError(t, err)

	_, err = client.ScreenLitigators(context.Background(), []string{"15125550100"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestComplianceClient_ConfigValidation(t *testing.T) {
	_, err := NewComplianceClient(ComplianceConfig{APIKey: "k"})
	require.Error(t, err)

	_, err = NewComplianceClient(ComplianceConfig{BaseURL: "http://localhost"})
	require.Error(t, err)

	client, err := NewComplianceClient(ComplianceConfig{
		BaseURL: "http://localhost",
		APIKey:  "k",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultComplianceBatchSize, client.MaxBatchSize())
}
