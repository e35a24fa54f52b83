package nwps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/riverwatchhq/riverwatch/internal/models"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

const defaultTimeout = 15 * time.Second

// Config carries connection options for the streamflow forecast API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to a National Water Prediction Service style streamflow API.
// All calls honour the passed context and the configured per-call timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a forecast API client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("nwps: base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithModule("nwps"),
	}, nil
}

// GetForecast fetches the predicted streamflow series for a station over the
// requested horizon. Points with missing timestamps or flows are dropped
// rather than guessed. An empty series is a valid result.
func (c *Client) GetForecast(ctx context.Context, stationID string, fr models.ForecastRange) ([]models.ForecastPoint, error) {
	if !fr.Valid() {
		return nil, fmt.Errorf("nwps: forecast: unknown range %q", fr)
	}

	endpoint := fmt.Sprintf("%s/reaches/%s/streamflow?series=%s",
		c.baseURL, url.PathEscape(stationID), url.QueryEscape(string(fr)))

	var payload forecastResponse
	if err := c.doGet(ctx, endpoint, "forecast", &payload); err != nil {
		return nil, err
	}

	unit, err := parseUnit(payload.Series.Units)
	if err != nil {
		return nil, fmt.Errorf("nwps: forecast %s: %w", stationID, err)
	}

	points := make([]models.ForecastPoint, 0, len(payload.Series.Data))
	for _, raw := range payload.Series.Data {
		if raw.ValidTime == "" || raw.Flow == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw.ValidTime)
		if err != nil {
			c.logger.Debug("dropping forecast point with bad timestamp",
				zap.String("station_id", stationID),
				zap.String("valid_time", raw.ValidTime))
			continue
		}
		points = append(points, models.ForecastPoint{
			ValidTime: ts,
			Flow:      *raw.Flow,
			Unit:      unit,
			Range:     fr,
		})
	}
	return points, nil
}

// GetReturnPeriods fetches the station's flood return-period thresholds.
// Entries with missing years or flows are dropped; a set with fewer than the
// published six periods is still usable.
func (c *Client) GetReturnPeriods(ctx context.Context, stationID string) (*models.ThresholdSet, error) {
	endpoint := fmt.Sprintf("%s/reaches/%s/return-periods", c.baseURL, url.PathEscape(stationID))

	var payload returnPeriodResponse
	if err := c.doGet(ctx, endpoint, "thresholds", &payload); err != nil {
		return nil, err
	}

	unit, err := parseUnit(payload.Units)
	if err != nil {
		return nil, fmt.Errorf("nwps: thresholds %s: %w", stationID, err)
	}

	set := &models.ThresholdSet{
		StationID: stationID,
		Unit:      unit,
		Flows:     make(map[int]float64, len(payload.ReturnPeriods)),
	}
	for _, raw := range payload.ReturnPeriods {
		if raw.Years <= 0 || raw.Flow == nil {
			continue
		}
		set.Flows[raw.Years] = *raw.Flow
	}
	return set, nil
}

func (c *Client) doGet(ctx context.Context, endpoint, kind string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("nwps: %s: create request: %w", kind, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("nwps: %s request: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nwps: %s: status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("nwps: %s: decode response: %w", kind, err)
	}

	metrics.UpstreamRequests.WithLabelValues(kind, "ok").Inc()
	return nil
}

func parseUnit(raw string) (models.FlowUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cfs", "ft3/s":
		return models.FlowUnitCFS, nil
	case "cms", "m3/s":
		return models.FlowUnitCMS, nil
	default:
		return "", fmt.Errorf("unsupported flow unit %q", raw)
	}
}

// Wire types for the upstream API.

type forecastResponse struct {
	ReachID string         `json:"reach_id"`
	Series  forecastSeries `json:"series"`
}

type forecastSeries struct {
	Units string          `json:"units"`
	Data  []forecastPoint `json:"data"`
}

type forecastPoint struct {
	ValidTime string   `json:"valid_time"`
	Flow      *float64 `json:"flow"`
}

type returnPeriodResponse struct {
	ReachID       string              `json:"reach_id"`
	Units         string              `json:"units"`
	ReturnPeriods []returnPeriodEntry `json:"return_periods"`
}

type returnPeriodEntry struct {
	Years int      `json:"years"`
	Flow  *float64 `json:"flow"`
}
