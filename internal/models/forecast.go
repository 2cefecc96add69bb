package models

// Upstream variable names.
const (
	VarTemperature2M            = "temperature_2m"
	VarRelativeHumidity2M       = "relative_humidity_2m"
	VarDewPoint2M               = "dew_point_2m"
	VarPrecipitationProbability = "precipitation_probability"
)

const (
	DefaultLatitude        = 41.894689
	DefaultLongitude       = -87.677832
	DefaultTemperatureUnit = "fahrenheit"
)

// ForecastParams is the full set of query parameters sent upstream.
type ForecastParams struct {
	Latitude        float64
	Longitude       float64
	Minutely15      []string
	Hourly          []string
	TemperatureUnit string
}

// DefaultParams returns a fresh copy of the fixed request defaults.
func DefaultParams() ForecastParams {
	return ForecastParams{
		Latitude:        DefaultLatitude,
		Longitude:       DefaultLongitude,
		Minutely15:      []string{VarTemperature2M, VarRelativeHumidity2M, VarDewPoint2M},
		Hourly:          []string{VarPrecipitationProbability},
		TemperatureUnit: DefaultTemperatureUnit,
	}
}

// TimeBlock is one columnar time series. Values[i] holds the samples of the
// i-th requested variable, aligned with the time axis.
type TimeBlock struct {
	Start    int64
	End      int64
	Interval int64
	Values   []Values
}

// ForecastResponse is a single location's upstream result.
type ForecastResponse struct {
	Latitude         float64
	Longitude        float64
	Elevation        float64
	UTCOffsetSeconds int
	Minutely15       *TimeBlock
	Hourly           *TimeBlock
}
