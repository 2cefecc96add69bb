package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bobby-s-dev/forecast-proxy/internal/models"
	"go.uber.org/zap"
)

type stubFetcher struct {
	responses []models.ForecastResponse
	err       error
	calls     int
	params    models.ForecastParams
}

func (s *stubFetcher) FetchForecast(ctx context.Context, params models.ForecastParams) ([]models.ForecastResponse, error) {
	s.calls++
	s.params = params
	return s.responses, s.err
}

const testStart = int64(1_700_000_000)

func sampleResponse() models.ForecastResponse {
	return models.ForecastResponse{
		Latitude:         41.89,
		Longitude:        -87.68,
		Elevation:        181,
		UTCOffsetSeconds: 0,
		Minutely15: &models.TimeBlock{
			Start:    testStart,
			End:      testStart + 3600,
			Interval: 900,
			Values: []models.Values{
				{50, 51, 52, 53},
				{60, 61, 62, 63},
				{40, 41, 42, 43},
			},
		},
		Hourly: &models.TimeBlock{
			Start:    testStart,
			End:      testStart + 7200,
			Interval: 3600,
			Values: []models.Values{
				{10, 20},
			},
		},
	}
}

func TestBuildParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := BuildParams(Coordinates{})
		if p.Latitude != models.DefaultLatitude || p.Longitude != models.DefaultLongitude {
			t.Errorf("got (%v, %v), want defaults", p.Latitude, p.Longitude)
		}
	})

	t.Run("overrides only coordinates", func(t *testing.T) {
		p := BuildParams(Coordinates{Latitude: ptr(10), Longitude: ptr(20)})
		if p.Latitude != 10 || p.Longitude != 20 {
			t.Errorf("got (%v, %v), want (10, 20)", p.Latitude, p.Longitude)
		}
		want := models.DefaultParams()
		if p.TemperatureUnit != want.TemperatureUnit {
			t.Errorf("TemperatureUnit = %q, want %q", p.TemperatureUnit, want.TemperatureUnit)
		}
		if len(p.Minutely15) != 3 || p.Minutely15[0] != models.VarTemperature2M {
			t.Errorf("Minutely15 = %v", p.Minutely15)
		}
		if len(p.Hourly) != 1 || p.Hourly[0] != models.VarPrecipitationProbability {
			t.Errorf("Hourly = %v", p.Hourly)
		}
	})

	t.Run("defaults are not shared", func(t *testing.T) {
		p := BuildParams(Coordinates{})
		p.Minutely15[0] = "wind_speed_10m"
		if BuildParams(Coordinates{}).Minutely15[0] != models.VarTemperature2M {
			t.Error("mutating built params leaked into defaults")
		}
	})
}

func TestValidateLayout(t *testing.T) {
	if err := ValidateLayout(); err != nil {
		t.Fatalf("ValidateLayout() = %v", err)
	}
	if err := compareLayout("x", []string{"a", "b"}, []string{"b", "a"}); err == nil {
		t.Error("expected mismatch error for reordered variables")
	}
	if err := compareLayout("x", []string{"a"}, []string{"a", "b"}); err == nil {
		t.Error("expected mismatch error for length difference")
	}
}

func TestTimeAxis(t *testing.T) {
	block := &models.TimeBlock{Start: testStart, End: testStart + 3600, Interval: 900}

	times, err := TimeAxis(block, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 4 {
		t.Fatalf("len = %d, want 4", len(times))
	}
	for i, got := range times {
		want := time.Unix(testStart+int64(i)*900, 0).UTC()
		if !got.Equal(want) {
			t.Errorf("times[%d] = %v, want %v", i, got, want)
		}
	}

	shifted, err := TimeAxis(block, -18000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Unix(testStart-18000, 0).UTC(); !shifted[0].Equal(want) {
		t.Errorf("shifted[0] = %v, want %v", shifted[0], want)
	}
}

func TestTimeAxis_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		block models.TimeBlock
	}{
		{name: "non-exact division", block: models.TimeBlock{Start: 0, End: 1000, Interval: 900}},
		{name: "zero interval", block: models.TimeBlock{Start: 0, End: 900, Interval: 0}},
		{name: "end before start", block: models.TimeBlock{Start: 900, End: 0, Interval: 900}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TimeAxis(&tt.block, 0)
			if !errors.Is(err, ErrMalformedBlock) {
				t.Errorf("error = %v, want ErrMalformedBlock", err)
			}
		})
	}
}

func TestBuildWeatherData(t *testing.T) {
	data, err := BuildWeatherData(sampleResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Coordinates.Elevation != 181 {
		t.Errorf("Elevation = %v, want 181", data.Coordinates.Elevation)
	}
	if len(data.Minutely15.Time) != 4 {
		t.Fatalf("minutely15 time len = %d, want 4", len(data.Minutely15.Time))
	}
	if data.Minutely15.Temperature2M[1] != 51 {
		t.Errorf("temperature[1] = %v, want 51", data.Minutely15.Temperature2M[1])
	}
	if data.Minutely15.RelativeHumidity2M[2] != 62 {
		t.Errorf("humidity[2] = %v, want 62", data.Minutely15.RelativeHumidity2M[2])
	}
	if data.Minutely15.DewPoint2M[3] != 43 {
		t.Errorf("dew point[3] = %v, want 43", data.Minutely15.DewPoint2M[3])
	}
	if len(data.Hourly.Time) != 2 || data.Hourly.PrecipitationProbability[1] != 20 {
		t.Errorf("hourly = %+v", data.Hourly)
	}
}

func TestBuildWeatherData_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ForecastResponse)
	}{
		{name: "missing hourly block", mutate: func(r *models.ForecastResponse) { r.Hourly = nil }},
		{name: "too few variables", mutate: func(r *models.ForecastResponse) {
			r.Minutely15.Values = r.Minutely15.Values[:2]
		}},
		{name: "value length mismatch", mutate: func(r *models.ForecastResponse) {
			r.Minutely15.Values[0] = models.Values{1, 2, 3}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := sampleResponse()
			tt.mutate(&resp)
			if _, err := BuildWeatherData(resp); !errors.Is(err, ErrMalformedBlock) {
				t.Errorf("error = %v, want ErrMalformedBlock", err)
			}
		})
	}
}

func TestForecaster_GetWeather(t *testing.T) {
	t.Run("uses first response", func(t *testing.T) {
		second := sampleResponse()
		second.Latitude = 0
		fetcher := &stubFetcher{responses: []models.ForecastResponse{sampleResponse(), second}}
		f := NewForecaster(fetcher, zap.NewNop())

		data, err := f.GetWeather(context.Background(), Coordinates{Latitude: ptr(41.89)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if data.Coordinates.Latitude != 41.89 {
			t.Errorf("Latitude = %v, want 41.89", data.Coordinates.Latitude)
		}
		if fetcher.calls != 1 {
			t.Errorf("calls = %d, want 1", fetcher.calls)
		}
		if fetcher.params.Latitude != 41.89 || fetcher.params.Longitude != models.DefaultLongitude {
			t.Errorf("params = %+v", fetcher.params)
		}
	})

	t.Run("empty result", func(t *testing.T) {
		f := NewForecaster(&stubFetcher{}, zap.NewNop())
		if _, err := f.GetWeather(context.Background(), Coordinates{}); !errors.Is(err, ErrUpstreamEmpty) {
			t.Errorf("error = %v, want ErrUpstreamEmpty", err)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		boom := errors.New("boom")
		f := NewForecaster(&stubFetcher{err: boom}, zap.NewNop())

		_, err := f.GetWeather(context.Background(), Coordinates{})
		var callErr *UpstreamCallError
		if !errors.As(err, &callErr) {
			t.Fatalf("error = %v, want UpstreamCallError", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("error %v does not wrap the cause", err)
		}
	})

	t.Run("missing samples survive", func(t *testing.T) {
		resp := sampleResponse()
		resp.Minutely15.Values[0][2] = float32(math.NaN())
		f := NewForecaster(&stubFetcher{responses: []models.ForecastResponse{resp}}, zap.NewNop())

		data, err := f.GetWeather(context.Background(), Coordinates{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !math.IsNaN(float64(data.Minutely15.Temperature2M[2])) {
			t.Errorf("temperature[2] = %v, want NaN", data.Minutely15.Temperature2M[2])
		}
	})
}
