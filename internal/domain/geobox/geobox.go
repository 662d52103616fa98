// Package geobox parses rectangular lat/lon filters of the form [lat1,lon1 TO lat2,lon2].
package geobox

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/timerange"
)

// World is the whole-earth box.
var World = Box{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}

// Box is a canonical rectangle: min <= max on both axes.
type Box struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Parse parses a bracketed corner pair. Corner order does not matter.
func Parse(s string) (Box, error) {
	left, right, err := timerange.Split(s)
	if err != nil {
		return Box{}, err
	}
	lat1, lon1, err := parsePoint(left)
	if err != nil {
		return Box{}, err
	}
	lat2, lon2, err := parsePoint(right)
	if err != nil {
		return Box{}, err
	}
	return FromCorners(lat1, lon1, lat2, lon2)
}

// FromCorners builds the bounding rectangle of two opposite corners.
func FromCorners(lat1, lon1, lat2, lon2 float64) (Box, error) {
	mp, err := geom.NewMultiPoint(geom.XY).SetCoords([]geom.Coord{{lat1, lon1}, {lat2, lon2}})
	if err != nil {
		return Box{}, fmt.Errorf("build corners: %w", err)
	}
	b := mp.Bounds()
	return Box{
		MinLat: b.Min(0),
		MinLon: b.Min(1),
		MaxLat: b.Max(0),
		MaxLon: b.Max(1),
	}, nil
}

func parsePoint(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: point %q must be <lat>,<lon>", domain.ErrPatternMismatch, s)
	}
	lat, err = parseCoord("latitude", parts[0])
	if err != nil {
		return 0, 0, err
	}
	lon, err = parseCoord("longitude", parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// parseCoord accepts finite decimals only; ParseFloat alone lets NaN and Inf through.
func parseCoord(axis, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrNumberFormat, axis, s)
	}
	return v, nil
}

// String renders the canonical [minLat,minLon TO maxLat,maxLon] form.
func (b Box) String() string {
	return fmt.Sprintf("[%s,%s TO %s,%s]",
		formatCoord(b.MinLat), formatCoord(b.MinLon), formatCoord(b.MaxLat), formatCoord(b.MaxLon))
}

// Envelope returns the engine envelope corners: upper-left then lower-right, as [lon, lat].
func (b Box) Envelope() [][2]float64 {
	return [][2]float64{{b.MinLon, b.MaxLat}, {b.MaxLon, b.MinLat}}
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
