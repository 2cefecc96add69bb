package models

import (
	"time"
)

type Coordinates struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Elevation        float64 `json:"elevation"`
	UTCOffsetSeconds int     `json:"utcOffsetSeconds"`
}

type Minutely15 struct {
	Time               []time.Time `json:"time"`
	Temperature2M      Values      `json:"temperature_2m"`
	RelativeHumidity2M Values      `json:"relative_humidity_2m"`
	DewPoint2M         Values      `json:"dew_point_2m"`
}

type Hourly struct {
	Time                     []time.Time `json:"time"`
	PrecipitationProbability Values      `json:"precipitation_probability"`
}

// WeatherData is the reshaped payload returned to the browser client.
type WeatherData struct {
	Coordinates Coordinates `json:"coordinates"`
	Minutely15  Minutely15  `json:"minutely15"`
	Hourly      Hourly      `json:"hourly"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
