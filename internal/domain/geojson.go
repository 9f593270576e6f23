package domain

import "github.com/paulmach/orb/geojson"

// Feature encodes the marker as a GeoJSON point carrying its style and popup.
func (m Marker) Feature() *geojson.Feature {
	f := geojson.NewFeature(m.Point)
	if m.EarthquakeID != "" {
		f.ID = m.EarthquakeID
	}
	f.Properties["magnitude"] = m.Magnitude
	f.Properties["style"] = m.Style
	f.Properties["popup"] = m.Popup
	return f
}

// Feature encodes the boundary as a GeoJSON line or polygon carrying its style.
func (b BoundaryLine) Feature() *geojson.Feature {
	f := geojson.NewFeature(b.Geometry)
	if b.Name != "" {
		f.Properties["name"] = b.Name
	}
	f.Properties["style"] = b.Style
	return f
}
