package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestMarkerRadius(t *testing.T) {
	tests := []struct {
		mag  float64
		want float64
	}{
		{0, 1},
		{2, 6},
		{5, 15},
		{4.5, 13.5},
		{0.2, 0.6000000000000001},
		{-0.5, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarkerRadius(tt.mag), "mag %v", tt.mag)
	}
}

func TestFillColor(t *testing.T) {
	tests := []struct {
		mag  float64
		want string
	}{
		{5.1, "#581845"},
		{5.0, "#900C3F"},
		{4.5, "#900C3F"},
		{4.0, "#C70039"},
		{3.2, "#C70039"},
		{2.5, "#FF5733"},
		{1.5, "#FFC300"},
		{1.0, "#DAF7A6"},
		{0.5, "#DAF7A6"},
		{-1, "#DAF7A6"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FillColor(tt.mag), "mag %v", tt.mag)
	}
}

func TestLegendColor(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0.9, "rgb(255,255,178)"},
		{1, "rgb(254,204,92)"},
		{2.5, "rgb(253,141,60)"},
		{3.99, "rgb(240,59,32)"},
		{4, "rgb(189,0,38)"},
		{9, "rgb(189,0,38)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LegendColor(tt.d), "d %v", tt.d)
	}
}

func TestLegendRows(t *testing.T) {
	rows := LegendRows(LegendGrades)

	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"0–1", "1–2", "2–3", "3–4", "4+"}, labels)

	// Swatches sample the legend scale one step above each grade.
	assert.Equal(t, "rgb(254,204,92)", rows[0].Color)
	assert.Equal(t, "rgb(189,0,38)", rows[3].Color)
	assert.Equal(t, "rgb(189,0,38)", rows[4].Color)
}

func TestLegendRows_Empty(t *testing.T) {
	assert.Empty(t, LegendRows(nil))
}

func TestMarkerStyle(t *testing.T) {
	assert.Equal(t, CircleStyle{
		Radius:      13.5,
		FillColor:   "#900C3F",
		Color:       "#000000",
		Weight:      0.5,
		Stroke:      true,
		Opacity:     1,
		FillOpacity: 1,
	}, MarkerStyle(4.5))
}

func TestPlateStyle(t *testing.T) {
	assert.Equal(t, LineStyle{Color: "#DC143C", Weight: 2}, PlateStyle())
}

func TestPopupHTML(t *testing.T) {
	q := Earthquake{
		Magnitude: 4.5,
		Place:     "Test Ridge",
		Time:      time.UnixMilli(0),
	}
	popup := PopupHTML(q)

	assert.Contains(t, popup, "Location: Test Ridge")
	assert.Contains(t, popup, "Date & Time: Thu Jan 01 1970 00:00:00 GMT+0000 (UTC)")
	assert.Contains(t, popup, "Magnitude: 4.5")
	assert.Equal(t, 2, strings.Count(popup, "<hr>"))

	// Location precedes time, which precedes magnitude.
	assert.Less(t, strings.Index(popup, "Location:"), strings.Index(popup, "Date & Time:"))
	assert.Less(t, strings.Index(popup, "Date & Time:"), strings.Index(popup, "Magnitude:"))
}

func TestPopupHTML_EscapesPlace(t *testing.T) {
	popup := PopupHTML(Earthquake{Place: `<script>alert("x")</script>`})
	assert.NotContains(t, popup, "<script>")
	assert.Contains(t, popup, "&lt;script&gt;")
}

func TestRenderEarthquake_UsesClock(t *testing.T) {
	frozen := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	m := RenderEarthquake(Earthquake{ID: "us1", Magnitude: 2, Point: orb.Point{1, 2}})
	assert.Equal(t, frozen, m.RenderedAt)
	assert.Equal(t, "us1", m.EarthquakeID)
	assert.Equal(t, orb.Point{1, 2}, m.Point)
	assert.Equal(t, 6.0, m.Style.Radius)
	assert.Equal(t, frozen, Now())
}

func TestRenderBoundary(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	b := RenderBoundary(Boundary{Name: "NA-PA", Geometry: line})
	assert.Equal(t, "NA-PA", b.Name)
	assert.Equal(t, line, b.Geometry)
	assert.Equal(t, PlateStyle(), b.Style)
}
