package geo

import "math"

const (
	kmPerDegreeLatitude = 111.0
	// keeps points lying exactly on the radius inside the box despite rounding
	boundsPadding = 1e-6
)

// Range is an inclusive interval in degrees.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds is a latitude band plus zero or more longitude ranges. No longitude
// ranges means every longitude is accepted.
type Bounds struct {
	Latitude   Range   `json:"latitude"`
	Longitudes []Range `json:"longitudes,omitempty"`
}

// Contains reports whether p lies inside the box.
func (b Bounds) Contains(p Point) bool {
	if !b.Latitude.contains(p.Latitude) {
		return false
	}
	if len(b.Longitudes) == 0 {
		return true
	}
	for _, r := range b.Longitudes {
		if r.contains(p.Longitude) {
			return true
		}
	}
	return false
}

// BoundingBox returns a box containing every point within radiusKm of origin.
// It is a coarse pre-filter only: callers still compare the exact distance.
func BoundingBox(origin Point, radiusKm float64) Bounds {
	latDelta := radiusKm/kmPerDegreeLatitude + boundsPadding

	bounds := Bounds{
		Latitude: Range{
			Min: math.Max(origin.Latitude-latDelta, -90),
			Max: math.Min(origin.Latitude+latDelta, 90),
		},
	}

	// The circle reaches a pole, so it spans all longitudes.
	if origin.Latitude+latDelta >= 90 || origin.Latitude-latDelta <= -90 {
		return bounds
	}

	angular := radiusKm / earthRadiusKm
	if angular >= math.Pi/2 {
		return bounds
	}

	ratio := math.Sin(angular) / math.Cos(degreesToRadians(origin.Latitude))
	if ratio >= 1 {
		return bounds
	}

	lonDelta := radiansToDegrees(math.Asin(ratio)) + boundsPadding
	minLon := origin.Longitude - lonDelta
	maxLon := origin.Longitude + lonDelta

	switch {
	case minLon < -180:
		bounds.Longitudes = []Range{{Min: minLon + 360, Max: 180}, {Min: -180, Max: maxLon}}
	case maxLon > 180:
		bounds.Longitudes = []Range{{Min: minLon, Max: 180}, {Min: -180, Max: maxLon - 360}}
	default:
		bounds.Longitudes = []Range{{Min: minLon, Max: maxLon}}
	}

	return bounds
}
