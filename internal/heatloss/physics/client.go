// Package physics is the HTTP client for the thermal-physics engine that
// produces raw per-room heat losses.
package physics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"heatsurvey_backend/internal/heatloss/transport"
	"heatsurvey_backend/platform/apperr"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"
)

const (
	heatLossPath = "/v1/heat-loss"
	pingPath     = "/v1/ping"

	// maxErrorBody bounds how much of an upstream error body is read.
	maxErrorBody = 4 << 10
)

const msgPhysicsUnavailable = "physics engine unavailable"

// Request is the survey geometry sent for calculation.
type Request struct {
	SurveyID string                      `json:"surveyId,omitempty"`
	Rooms    []transport.RoomInput       `json:"rooms"`
	Surfaces []transport.SurfaceInput    `json:"surfaces"`
	Emitters []transport.EmitterInput    `json:"emitters"`
	Design   *transport.DesignConditions `json:"designConditions,omitempty"`
}

// Result is the engine's per-room output plus the provenance trail of every
// input it used.
type Result struct {
	Rooms      []transport.RawHeatLossInput `json:"rooms"`
	AuditTrail []transport.AuditEntry       `json:"auditTrail"`
}

// Client calls the physics engine over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// New creates a client. baseURL must not end in a slash.
func New(baseURL, apiKey string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
		metrics:    m,
	}
}

// Calculate posts the survey and decodes the raw results.
func (c *Client) Calculate(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode physics request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+heatLossPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.PhysicsRequest(time.Since(start), false)
		c.log.WithContext(ctx).PhysicsCallFailed(req.SurveyID, 0, err)
		return nil, apperr.Wrap(apperr.KindUnavailable, msgPhysicsUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		c.metrics.PhysicsRequest(time.Since(start), false)
		detail := readErrorBody(resp.Body)
		c.log.WithContext(ctx).PhysicsCallFailed(req.SurveyID, resp.StatusCode, fmt.Errorf("rejected: %s", detail))
		return nil, apperr.Validation("physics engine rejected the survey").WithDetails(detail)
	default:
		c.metrics.PhysicsRequest(time.Since(start), false)
		upstreamErr := fmt.Errorf("upstream status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
		c.log.WithContext(ctx).PhysicsCallFailed(req.SurveyID, resp.StatusCode, upstreamErr)
		return nil, apperr.Wrap(apperr.KindUnavailable, msgPhysicsUnavailable, upstreamErr)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.metrics.PhysicsRequest(time.Since(start), false)
		c.log.WithContext(ctx).PhysicsCallFailed(req.SurveyID, resp.StatusCode, err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "physics engine returned an unreadable response", err)
	}
	c.metrics.PhysicsRequest(time.Since(start), true)

	return &result, nil
}

// Ping checks that the engine is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pingPath, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed: status %d", resp.StatusCode)
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(bytes.TrimSpace(data))
}
