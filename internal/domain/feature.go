package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Earthquake is a single event from the USGS feed.
type Earthquake struct {
	ID        string
	Magnitude float64
	Place     string
	Time      time.Time
	Point     orb.Point // [lon, lat]
}

// Boundary is one plate-boundary segment. Geometry is a line or polygon type.
type Boundary struct {
	Name     string
	Geometry orb.Geometry
}

// CircleStyle is the path style of an earthquake marker.
type CircleStyle struct {
	Radius      float64 `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Stroke      bool    `json:"stroke"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// LineStyle is the path style of a plate boundary.
type LineStyle struct {
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
}

// Marker is a rendered earthquake: a circle marker with its style and popup.
type Marker struct {
	EarthquakeID string      `json:"id"`
	Point        orb.Point   `json:"-"`
	Magnitude    float64     `json:"magnitude"`
	Style        CircleStyle `json:"style"`
	Popup        string      `json:"popup"`
	RenderedAt   time.Time   `json:"rendered_at"`
}

// BoundaryLine is a rendered plate boundary.
type BoundaryLine struct {
	Name       string       `json:"name"`
	Geometry   orb.Geometry `json:"-"`
	Style      LineStyle    `json:"style"`
	RenderedAt time.Time    `json:"rendered_at"`
}

// TileLayer describes one selectable base map.
type TileLayer struct {
	Name        string
	Slug        string
	URLTemplate string // {id}, {z}, {x}, {y}, {accessToken} placeholders
	Attribution string
	StyleID     string
	AccessToken string
	MaxZoom     int
	TileSize    int // 0 means the 256px default
	ZoomOffset  int
}
