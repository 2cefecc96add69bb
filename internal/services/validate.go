package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinates is matched by every ValidationError.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ValidationError describes a rejected query parameter.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCoordinates }

// Coordinates are the caller-supplied overrides. A nil field means "use the default".
type Coordinates struct {
	Latitude  *float64
	Longitude *float64
}

func ParseLatitude(raw string) (*float64, error) {
	return parseBounded("latitude", raw, 90)
}

func ParseLongitude(raw string) (*float64, error) {
	return parseBounded("longitude", raw, 180)
}

// ParseCoordinates validates both raw query values. Any invalid field rejects
// the whole pair.
func ParseCoordinates(rawLatitude, rawLongitude string) (Coordinates, error) {
	lat, latErr := ParseLatitude(rawLatitude)
	lon, lonErr := ParseLongitude(rawLongitude)
	if err := errors.Join(latErr, lonErr); err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

func parseBounded(field, raw string, limit float64) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	// A value that is present but blank is malformed, not absent.
	raw = strings.TrimSpace(raw)

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Field: field, Value: raw, Reason: "not a number"}
	}
	if v < -limit || v > limit {
		return nil, &ValidationError{
			Field:  field,
			Value:  raw,
			Reason: fmt.Sprintf("must be between %g and %g", -limit, limit),
		}
	}

	return &v, nil
}
