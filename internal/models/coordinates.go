package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// ErrInvalidPoint is returned when a point cannot be built from the given input.
var ErrInvalidPoint = errors.New("invalid coordinate point")

// String returns the canonical wire form of the point: "lat,lng" with no spaces.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) +
		"," +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// ParsePoint parses a "lat, lng" string (spaces around the comma are optional)
// into Coordinates.
func ParsePoint(input string) (Coordinates, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrInvalidPoint, input)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad latitude in %q", ErrInvalidPoint, input)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad longitude in %q", ErrInvalidPoint, input)
	}

	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// PointFromPair builds Coordinates from a (latitude, longitude) numeric pair.
func PointFromPair(pair []float64) (Coordinates, error) {
	const pairLength = 2
	if len(pair) != pairLength {
		return Coordinates{}, fmt.Errorf("%w: pair must have exactly 2 elements, got %d", ErrInvalidPoint, len(pair))
	}

	return Coordinates{Latitude: pair[0], Longitude: pair[1]}, nil
}
