package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/forecast-proxy/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1"

	minutely15Interval = 900
	hourlyInterval     = 3600
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

// OpenMeteoForecastResponse mirrors one location of /v1/forecast with
// timeformat=unixtime.
type OpenMeteoForecastResponse struct {
	Latitude         float64                    `json:"latitude"`
	Longitude        float64                    `json:"longitude"`
	GenerationTimeMs float64                    `json:"generationtime_ms"`
	UTCOffsetSeconds int                        `json:"utc_offset_seconds"`
	Timezone         string                     `json:"timezone"`
	Elevation        float64                    `json:"elevation"`
	Minutely15       map[string]json.RawMessage `json:"minutely_15"`
	Hourly           map[string]json.RawMessage `json:"hourly"`
}

type openMeteoError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return NewNamedOpenMeteoClient("openmeteo", baseURL, config, logger)
}

// NewNamedOpenMeteoClient is NewOpenMeteoClient with its own breaker name.
func NewNamedOpenMeteoClient(name, baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return newOpenMeteoClient(baseURL, NewBaseClient(name, config, logger))
}

func newOpenMeteoClient(baseURL string, base *BaseClient) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ForecastURL builds the /forecast request for params.
func (c *OpenMeteoClient) ForecastURL(params models.ForecastParams) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(params.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(params.Longitude, 'f', -1, 64))
	if len(params.Minutely15) > 0 {
		q.Set("minutely_15", strings.Join(params.Minutely15, ","))
	}
	if len(params.Hourly) > 0 {
		q.Set("hourly", strings.Join(params.Hourly, ","))
	}
	if params.TemperatureUnit != "" {
		q.Set("temperature_unit", params.TemperatureUnit)
	}
	q.Set("timeformat", "unixtime")
	q.Set("timezone", "auto")

	return c.baseURL + "/forecast?" + q.Encode()
}

// FetchForecast calls the forecast endpoint once and returns every location
// in the reply, with each block's variables ordered as requested.
func (c *OpenMeteoClient) FetchForecast(ctx context.Context, params models.ForecastParams) ([]models.ForecastResponse, error) {
	data, err := c.Get(ctx, c.ForecastURL(params))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			var apiErr openMeteoError
			if json.Unmarshal([]byte(statusErr.Body), &apiErr) == nil && apiErr.Reason != "" {
				return nil, fmt.Errorf("open-meteo rejected request (HTTP %d): %s", statusErr.StatusCode, apiErr.Reason)
			}
		}
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	raw, err := decodeForecastList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	responses := make([]models.ForecastResponse, 0, len(raw))
	for i, r := range raw {
		resp := models.ForecastResponse{
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			Elevation:        r.Elevation,
			UTCOffsetSeconds: r.UTCOffsetSeconds,
		}

		if r.Minutely15 != nil {
			block, err := toTimeBlock(r.Minutely15, params.Minutely15, minutely15Interval)
			if err != nil {
				return nil, fmt.Errorf("location %d minutely_15: %w", i, err)
			}
			resp.Minutely15 = block
		}
		if r.Hourly != nil {
			block, err := toTimeBlock(r.Hourly, params.Hourly, hourlyInterval)
			if err != nil {
				return nil, fmt.Errorf("location %d hourly: %w", i, err)
			}
			resp.Hourly = block
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

// decodeForecastList accepts both the single-location object and the
// multi-location array form.
func decodeForecastList(data []byte) ([]OpenMeteoForecastResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []OpenMeteoForecastResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single OpenMeteoForecastResponse
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []OpenMeteoForecastResponse{single}, nil
}

func toTimeBlock(fields map[string]json.RawMessage, variables []string, nominalInterval int64) (*models.TimeBlock, error) {
	var times []int64
	if rawTime, ok := fields["time"]; ok {
		if err := json.Unmarshal(rawTime, &times); err != nil {
			return nil, fmt.Errorf("decoding time axis: %w", err)
		}
	}

	interval := nominalInterval
	if len(times) >= 2 {
		interval = times[1] - times[0]
	}

	block := &models.TimeBlock{
		Interval: interval,
		Values:   make([]models.Values, 0, len(variables)),
	}
	if len(times) > 0 {
		block.Start = times[0]
		block.End = times[0] + int64(len(times))*interval
	}

	for _, name := range variables {
		rawValues, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("variable %q missing from response", name)
		}
		var values models.Values
		if err := json.Unmarshal(rawValues, &values); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		block.Values = append(block.Values, values)
	}

	return block, nil
}
