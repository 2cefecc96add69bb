package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobby-s-dev/forecast-proxy/internal/models"
	"go.uber.org/zap"
)

var (
	ErrUpstreamEmpty  = errors.New("no responses from Open-Meteo")
	ErrMalformedBlock = errors.New("malformed time-series block")
)

// UpstreamCallError wraps a failed call to the forecast API.
type UpstreamCallError struct {
	Err error
}

func (e *UpstreamCallError) Error() string { return "upstream call failed: " + e.Err.Error() }

func (e *UpstreamCallError) Unwrap() error { return e.Err }

// Value positions inside each block. The upstream returns value arrays in
// the order the variables were requested, so these must line up with
// models.DefaultParams.
const (
	minutelyTemperature = iota
	minutelyRelativeHumidity
	minutelyDewPoint
	minutelyVariableCount
)

const (
	hourlyPrecipitationProbability = iota
	hourlyVariableCount
)

var (
	minutely15Layout = [minutelyVariableCount]string{
		minutelyTemperature:      models.VarTemperature2M,
		minutelyRelativeHumidity: models.VarRelativeHumidity2M,
		minutelyDewPoint:         models.VarDewPoint2M,
	}
	hourlyLayout = [hourlyVariableCount]string{
		hourlyPrecipitationProbability: models.VarPrecipitationProbability,
	}
)

type Fetcher interface {
	FetchForecast(ctx context.Context, params models.ForecastParams) ([]models.ForecastResponse, error)
}

type Forecaster struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewForecaster(fetcher Fetcher, logger *zap.Logger) *Forecaster {
	return &Forecaster{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ValidateLayout checks that the value positions agree with the variables
// actually requested upstream.
func ValidateLayout() error {
	defaults := models.DefaultParams()
	if err := compareLayout("minutely_15", minutely15Layout[:], defaults.Minutely15); err != nil {
		return err
	}
	return compareLayout("hourly", hourlyLayout[:], defaults.Hourly)
}

func compareLayout(block string, layout, requested []string) error {
	if len(layout) != len(requested) {
		return fmt.Errorf("%s layout has %d variables, request has %d", block, len(layout), len(requested))
	}
	for i := range layout {
		if layout[i] != requested[i] {
			return fmt.Errorf("%s position %d: layout expects %s, request has %s", block, i, layout[i], requested[i])
		}
	}
	return nil
}

// BuildParams overlays the coordinates onto the defaults. Variable selections
// and units always come from the defaults.
func BuildParams(coords Coordinates) models.ForecastParams {
	params := models.DefaultParams()
	if coords.Latitude != nil {
		params.Latitude = *coords.Latitude
	}
	if coords.Longitude != nil {
		params.Longitude = *coords.Longitude
	}
	return params
}

func (f *Forecaster) GetWeather(ctx context.Context, coords Coordinates) (*models.WeatherData, error) {
	params := BuildParams(coords)

	f.logger.Debug("Fetching forecast",
		zap.Float64("latitude", params.Latitude),
		zap.Float64("longitude", params.Longitude))

	responses, err := f.fetcher.FetchForecast(ctx, params)
	if err != nil {
		return nil, &UpstreamCallError{Err: err}
	}
	if len(responses) == 0 {
		return nil, ErrUpstreamEmpty
	}

	return BuildWeatherData(responses[0])
}

// BuildWeatherData reshapes one columnar upstream result.
func BuildWeatherData(resp models.ForecastResponse) (*models.WeatherData, error) {
	offset := int64(resp.UTCOffsetSeconds)

	minutelyTime, minutelyValues, err := reshapeBlock("minutely_15", resp.Minutely15, minutelyVariableCount, offset)
	if err != nil {
		return nil, err
	}
	hourlyTime, hourlyValues, err := reshapeBlock("hourly", resp.Hourly, hourlyVariableCount, offset)
	if err != nil {
		return nil, err
	}

	return &models.WeatherData{
		Coordinates: models.Coordinates{
			Latitude:         resp.Latitude,
			Longitude:        resp.Longitude,
			Elevation:        resp.Elevation,
			UTCOffsetSeconds: resp.UTCOffsetSeconds,
		},
		Minutely15: models.Minutely15{
			Time:               minutelyTime,
			Temperature2M:      minutelyValues[minutelyTemperature],
			RelativeHumidity2M: minutelyValues[minutelyRelativeHumidity],
			DewPoint2M:         minutelyValues[minutelyDewPoint],
		},
		Hourly: models.Hourly{
			Time:                     hourlyTime,
			PrecipitationProbability: hourlyValues[hourlyPrecipitationProbability],
		},
	}, nil
}

func reshapeBlock(name string, block *models.TimeBlock, variables int, offset int64) ([]time.Time, []models.Values, error) {
	if block == nil {
		return nil, nil, fmt.Errorf("%w: %s block missing", ErrMalformedBlock, name)
	}
	if len(block.Values) < variables {
		return nil, nil, fmt.Errorf("%w: %s has %d variables, want %d", ErrMalformedBlock, name, len(block.Values), variables)
	}

	times, err := TimeAxis(block, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}

	values := block.Values[:variables]
	for i, v := range values {
		if len(v) != len(times) {
			return nil, nil, fmt.Errorf("%w: %s variable %d has %d values for %d timestamps",
				ErrMalformedBlock, name, i, len(v), len(times))
		}
	}

	return times, values, nil
}

// TimeAxis expands a block's start, end and interval into timestamps shifted
// by the UTC offset. A span that is not a whole number of intervals is
// rejected rather than truncated.
func TimeAxis(block *models.TimeBlock, utcOffsetSeconds int64) ([]time.Time, error) {
	if block.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval %d", ErrMalformedBlock, block.Interval)
	}
	span := block.End - block.Start
	if span < 0 || span%block.Interval != 0 {
		return nil, fmt.Errorf("%w: span %d is not a multiple of interval %d", ErrMalformedBlock, span, block.Interval)
	}

	count := span / block.Interval
	times := make([]time.Time, count)
	for i := int64(0); i < count; i++ {
		times[i] = time.Unix(block.Start+i*block.Interval+utcOffsetSeconds, 0).UTC()
	}
	return times, nil
}
