package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrMissingGeometry marks a feature without geometry.
	ErrMissingGeometry = errors.New("missing geometry")
	// ErrGeometryType marks a feature whose geometry cannot be drawn by its overlay.
	ErrGeometryType = errors.New("unsupported geometry type")
	// ErrMissingMagnitude marks an earthquake whose "mag" is absent, null, or not a number.
	ErrMissingMagnitude = errors.New("missing magnitude")
)

// SkippedFeature records a feature that was dropped during decoding.
type SkippedFeature struct {
	Index int
	ID    string
	Err   error
}

func (s SkippedFeature) Error() string {
	return fmt.Sprintf("feature %d (%s): %v", s.Index, s.ID, s.Err)
}

// DecodeEarthquakes extracts earthquakes from a USGS FeatureCollection.
// Features that are not points or lack a numeric magnitude are skipped and
// reported; the rest are returned in feed order.
func DecodeEarthquakes(fc *geojson.FeatureCollection) ([]Earthquake, []SkippedFeature) {
	if fc == nil {
		return nil, nil
	}

	quakes := make([]Earthquake, 0, len(fc.Features))
	var skipped []SkippedFeature

	for i, f := range fc.Features {
		id := featureID(f)
		if f == nil || f.Geometry == nil {
			skipped = append(skipped, SkippedFeature{Index: i, ID: id, Err: ErrMissingGeometry})
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			skipped = append(skipped, SkippedFeature{Index: i, ID: id, Err: fmt.Errorf("%w: %s", ErrGeometryType, f.Geometry.GeoJSONType())})
			continue
		}
		mag, ok := numberProperty(f.Properties, "mag")
		if !ok {
			skipped = append(skipped, SkippedFeature{Index: i, ID: id, Err: ErrMissingMagnitude})
			continue
		}

		q := Earthquake{
			ID:        id,
			Magnitude: mag,
			Point:     pt,
		}
		if place, ok := f.Properties["place"].(string); ok {
			q.Place = place
		}
		if ms, ok := numberProperty(f.Properties, "time"); ok {
			q.Time = time.UnixMilli(int64(ms)).UTC()
		}
		quakes = append(quakes, q)
	}

	return quakes, skipped
}

// DecodeBoundaries extracts plate boundaries from a FeatureCollection.
// Only line and polygon geometries are kept.
func DecodeBoundaries(fc *geojson.FeatureCollection) ([]Boundary, []SkippedFeature) {
	if fc == nil {
		return nil, nil
	}

	boundaries := make([]Boundary, 0, len(fc.Features))
	var skipped []SkippedFeature

	for i, f := range fc.Features {
		id := featureID(f)
		if f == nil || f.Geometry == nil {
			skipped = append(skipped, SkippedFeature{Index: i, ID: id, Err: ErrMissingGeometry})
			continue
		}
		switch f.Geometry.(type) {
		case orb.LineString, orb.MultiLineString, orb.Polygon, orb.MultiPolygon:
		default:
			skipped = append(skipped, SkippedFeature{Index: i, ID: id, Err: fmt.Errorf("%w: %s", ErrGeometryType, f.Geometry.GeoJSONType())})
			continue
		}

		b := Boundary{Geometry: f.Geometry}
		if name, ok := f.Properties["Name"].(string); ok {
			b.Name = name
		}
		boundaries = append(boundaries, b)
	}

	return boundaries, skipped
}

func featureID(f *geojson.Feature) string {
	if f == nil || f.ID == nil {
		return ""
	}
	if s, ok := f.ID.(string); ok {
		return s
	}
	return fmt.Sprint(f.ID)
}

// numberProperty reads a JSON number. encoding/json decodes numbers as float64.
func numberProperty(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
