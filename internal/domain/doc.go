// Package domain models the earthquake and plate-boundary data drawn on the map.
//
// # Data Sources
//
// Earthquakes come from the USGS summary feed (all earthquakes, past week),
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson.
// The feed is a GeoJSON FeatureCollection refreshed by USGS every minute; this
// service reads it once at startup.
//
// Plate boundaries come from the PB2002 model (Bird, 2003) as republished at
// https://github.com/fraxen/tectonicplates. Features are LineStrings; the
// "Name" property holds the two plate codes, e.g. "AF-AN".
//
// # USGS Feed Conventions
//
// Coordinates:
//
//	[longitude, latitude, depth_km]. Depth is dropped when decoding.
//
// Magnitude ("mag"):
//
//	A float that may be negative for very small local events (e.g. -0.5 on
//	the ml scale) and may be null for events still under review. Null
//	magnitudes are skipped, see [DecodeEarthquakes].
//
// Time ("time"):
//
//	Milliseconds since the Unix epoch, UTC.
//
// # Styling
//
// Two independent magnitude scales exist:
//
//	Marker fill ([FillColor]):  >5 | >4 | >3 | >2 | >1 | rest   (exclusive bounds)
//	Legend swatch ([LegendColor]): <1 | <2 | <3 | <4 | rest      (exclusive bounds)
//
// They use different palettes. The legend shows LegendColor(grade+1) for grades
// 0 through 4, which is what the map has always displayed.
package domain
