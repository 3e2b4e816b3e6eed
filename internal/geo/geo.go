// Package geo computes great-circle distances between items and callers.
package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/erazemk/zamenjava/internal/apperr"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate rejects coordinates outside [-90,90] x [-180,180] or NaN.
func (p Point) Validate() error {
	return ValidateCoordinates(p.Lat, p.Lon)
}

// ValidateCoordinates rejects out-of-range or NaN coordinates.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v: %w", lat, apperr.ErrInvalidCoordinate)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v: %w", lon, apperr.ErrInvalidCoordinate)
	}
	return nil
}

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinates(lat1, lon1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinates(lat2, lon2); err != nil {
		return 0, err
	}
	return haversine(lat1, lon1, lat2, lon2), nil
}

// Between is DistanceKm for two points.
func Between(a, b Point) (float64, error) {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a a hair above 1 for antipodal points.
	a = math.Min(1, a)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders a distance for display: whole meters below 1 km,
// one decimal below 10 km, whole kilometers above. The branch is chosen on
// the rounded value so 999.6 m reads "1.0km away" and 9.96 km "10km away".
func FormatDistance(km float64) string {
	if m := math.Round(km * 1000); m < 1000 {
		return fmt.Sprintf("%dm away", int(m))
	}
	if tenths := math.Round(km*10) / 10; tenths < 10 {
		return fmt.Sprintf("%.1fkm away", tenths)
	}
	return fmt.Sprintf("%dkm away", int(math.Round(km)))
}

// Ranked pairs a value with its distance from the reference point.
type Ranked[T any] struct {
	Value      T       `json:"item"`
	DistanceKm float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
}

// Rank orders values by distance from origin, nearest first. locate reports a
// value's position; values without one are dropped. A positive radiusKm drops
// values farther away than that; a negative or NaN radius is rejected. Ties keep their input order.
func Rank[T any](origin Point, values []T, radiusKm float64, locate func(T) (Point, bool)) ([]Ranked[T], error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, apperr.Invalid("radius must be a non-negative number")
	}

	ranked := make([]Ranked[T], 0, len(values))
	for _, v := range values {
		p, ok := locate(v)
		if !ok || p.Validate() != nil {
			continue
		}
		d := haversine(origin.Lat, origin.Lon, p.Lat, p.Lon)
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		ranked = append(ranked, Ranked[T]{Value: v, DistanceKm: d, Distance: FormatDistance(d)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked, nil
}
