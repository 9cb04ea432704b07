// Package flipapi provides a client for the flip analysis REST API.
package flipapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/autosave"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int                 `json:"-"`
	Message    string              `json:"error"`
	Fields     []domain.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return fmt.Sprintf("flip API error: status %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("flip API error: status %d: %s", e.StatusCode, e.Message)
}

// IsPartial reports whether err is a snapshot refused for a partial analysis,
// either by the server or by a session holding partial inputs.
func IsPartial(err error) bool {
	if errors.Is(err, domain.ErrPartialAnalysis) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// Client is the flip analysis API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://localhost:8080/api).
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "flipapi").Logger(),
	}
}

// GetCash fetches the live cash analysis.
func (c *Client) GetCash(ctx context.Context, propertyID string) (*analysis.CashAnalysis, error) {
	var view analysis.CashAnalysis
	if err := c.do(ctx, http.MethodGet, cashPath(propertyID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateCash sends a cash patch and returns the recomputed analysis.
func (c *Client) UpdateCash(ctx context.Context, propertyID string, patch domain.CashPatch) (*analysis.CashAnalysis, error) {
	var view analysis.CashAnalysis
	if err := c.do(ctx, http.MethodPut, cashPath(propertyID), patch, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetFinancing fetches the live financing analysis.
func (c *Client) GetFinancing(ctx context.Context, propertyID string) (*analysis.FinancingAnalysis, error) {
	var view analysis.FinancingAnalysis
	if err := c.do(ctx, http.MethodGet, financingPath(propertyID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateFinancing sends a financing patch and returns the recomputed analysis.
func (c *Client) UpdateFinancing(ctx context.Context, propertyID string, patch domain.FinancingPatch) (*analysis.FinancingAnalysis, error) {
	var view analysis.FinancingAnalysis
	if err := c.do(ctx, http.MethodPut, financingPath(propertyID), patch, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// AddPayment records a payment on a financing plan.
func (c *Client) AddPayment(ctx context.Context, propertyID, planID string, p domain.NewPayment) (*domain.FinancingPayment, error) {
	var resp struct {
		Payment domain.FinancingPayment `json:"payment"`
	}
	path := fmt.Sprintf("%s/%s/payments", financingPath(propertyID), planID)
	if err := c.do(ctx, http.MethodPost, path, p, &resp); err != nil {
		return nil, err
	}
	return &resp.Payment, nil
}

// DeletePayment removes a payment from a financing plan.
func (c *Client) DeletePayment(ctx context.Context, propertyID, planID, paymentID string) error {
	path := fmt.Sprintf("%s/%s/payments/%s", financingPath(propertyID), planID, paymentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CaptureSnapshot freezes the persisted analysis of the given kind.
func (c *Client) CaptureSnapshot(ctx context.Context, propertyID string, kind domain.AnalysisKind) (autosave.SnapshotResult, error) {
	var result autosave.SnapshotResult
	path := fmt.Sprintf("%s/%s/snapshot", analysisPath(propertyID), kind)
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return autosave.SnapshotResult{}, err
	}
	return result, nil
}

// ListCashSnapshots returns the cash snapshots of a property, newest first.
func (c *Client) ListCashSnapshots(ctx context.Context, propertyID string) ([]snapshots.CashSnapshot, error) {
	var resp struct {
		Items []snapshots.CashSnapshot `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, cashPath(propertyID)+"/snapshots", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListFinancingSnapshots returns the financing snapshots of a property, newest first.
func (c *Client) ListFinancingSnapshots(ctx context.Context, propertyID string) ([]snapshots.FinancingSnapshot, error) {
	var resp struct {
		Items []snapshots.FinancingSnapshot `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, financingPath(propertyID)+"/snapshots", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteSnapshot removes one snapshot.
func (c *Client) DeleteSnapshot(ctx context.Context, propertyID string, kind domain.AnalysisKind, snapshotID string) error {
	path := fmt.Sprintf("%s/%s/snapshots/%s", analysisPath(propertyID), kind, snapshotID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func analysisPath(propertyID string) string {
	return "/properties/" + propertyID + "/analysis"
}

func cashPath(propertyID string) string {
	return analysisPath(propertyID) + "/cash"
}

func financingPath(propertyID string) string {
	return analysisPath(propertyID) + "/financing"
}

// do performs one request. A nil body sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("method", method).Str("path", path).Msg("Making flip API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		bodyBytes, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(bodyBytes, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
