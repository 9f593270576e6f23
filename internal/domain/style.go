package domain

import (
	"html"
	"strconv"
	"strings"
	"time"
)

const (
	markerOutlineColor = "#000000"
	markerOutlineWidth = 0.5

	plateLineColor  = "#DC143C"
	plateLineWeight = 2

	// popupTimeLayout mirrors the browser's Date.toString() output in UTC.
	popupTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"
)

// LegendGrades are the lower bounds of the legend rows.
var LegendGrades = []float64{0, 1, 2, 3, 4}

// MarkerRadius scales magnitude linearly. Non-positive magnitudes get a radius
// of 1 so that small negative events stay visible.
func MarkerRadius(mag float64) float64 {
	if mag <= 0 {
		return 1
	}
	return mag * 3
}

// FillColor maps magnitude to the marker fill. Bounds are exclusive, so 5.0 is
// in the ">4" bucket.
func FillColor(mag float64) string {
	switch {
	case mag > 5:
		return "#581845"
	case mag > 4:
		return "#900C3F"
	case mag > 3:
		return "#C70039"
	case mag > 2:
		return "#FF5733"
	case mag > 1:
		return "#FFC300"
	default:
		return "#DAF7A6"
	}
}

// LegendColor maps a value to the legend swatch color.
func LegendColor(d float64) string {
	switch {
	case d < 1:
		return "rgb(255,255,178)"
	case d < 2:
		return "rgb(254,204,92)"
	case d < 3:
		return "rgb(253,141,60)"
	case d < 4:
		return "rgb(240,59,32)"
	default:
		return "rgb(189,0,38)"
	}
}

// MarkerStyle returns the full circle style for a magnitude.
func MarkerStyle(mag float64) CircleStyle {
	return CircleStyle{
		Radius:      MarkerRadius(mag),
		FillColor:   FillColor(mag),
		Color:       markerOutlineColor,
		Weight:      markerOutlineWidth,
		Stroke:      true,
		Opacity:     1,
		FillOpacity: 1,
	}
}

// PlateStyle is the uniform style of every plate boundary.
func PlateStyle() LineStyle {
	return LineStyle{Color: plateLineColor, Weight: plateLineWeight}
}

// PopupHTML builds the marker popup: location, time, and magnitude separated by rules.
func PopupHTML(q Earthquake) string {
	var b strings.Builder
	b.WriteString("<h4>Location: ")
	b.WriteString(html.EscapeString(q.Place))
	b.WriteString("</h4><hr><p>Date & Time: ")
	b.WriteString(FormatEventTime(q.Time))
	b.WriteString("</p><hr><p>Magnitude: ")
	b.WriteString(formatNumber(q.Magnitude))
	b.WriteString("</p>")
	return b.String()
}

// FormatEventTime renders an event time for humans, always in UTC.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format(popupTimeLayout)
}

// RenderEarthquake converts an earthquake into a styled marker.
func RenderEarthquake(q Earthquake) Marker {
	return Marker{
		EarthquakeID: q.ID,
		Point:        q.Point,
		Magnitude:    q.Magnitude,
		Style:        MarkerStyle(q.Magnitude),
		Popup:        PopupHTML(q),
		RenderedAt:   clock.Now().UTC(),
	}
}

// RenderBoundary converts a plate boundary into a styled line.
func RenderBoundary(b Boundary) BoundaryLine {
	return BoundaryLine{
		Name:       b.Name,
		Geometry:   b.Geometry,
		Style:      PlateStyle(),
		RenderedAt: clock.Now().UTC(),
	}
}

// LegendRow is one swatch and label of the magnitude legend.
type LegendRow struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// LegendRows builds one row per grade. Interior rows are labelled
// "<lower>–<upper>" and the last row "<lower>+".
func LegendRows(grades []float64) []LegendRow {
	rows := make([]LegendRow, 0, len(grades))
	for i, g := range grades {
		label := formatNumber(g)
		if i+1 < len(grades) {
			label += "–" + formatNumber(grades[i+1])
		} else {
			label += "+"
		}
		rows = append(rows, LegendRow{Color: LegendColor(g + 1), Label: label})
	}
	return rows
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
