// Command validate checks saved copies of the earthquake and plate boundary
// feeds against the decoding and styling rules the map applies. It reports
// features the service would skip, markers that disagree with the feature they
// came from, and how events spread across the legend buckets.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -earthquakes data/all_week.geojson \
//	  -plates data/PB2002_boundaries.json
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/render"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	quakesPath := flag.String("earthquakes", "", "path to a saved USGS GeoJSON summary feed")
	platesPath := flag.String("plates", "", "path to a saved PB2002 boundaries GeoJSON file")
	flag.Parse()

	if *quakesPath == "" || *platesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*quakesPath, *platesPath); code != 0 {
		os.Exit(code)
	}
}

func run(quakesPath, platesPath string) int {
	// Fixed render time so repeated runs print identical output.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Feed Validation ===")
	fmt.Println()

	quakeFC, err := loadCollection(quakesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load earthquakes: %v\n", err)
		return 1
	}
	plateFC, err := loadCollection(platesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load plates: %v\n", err)
		return 1
	}

	quakes, quakeSkips := domain.DecodeEarthquakes(quakeFC)
	boundaries, plateSkips := domain.DecodeBoundaries(plateFC)

	phases := []*phase{
		validateDecode("Earthquake feature decoding", quakeSkips),
		validateMarkers(quakeFC, quakes, quakeSkips),
		validateDecode("Plate boundary decoding", plateSkips),
		validateBoundaries(boundaries),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d earthquakes (%d skipped), %d boundaries (%d skipped)\n",
		len(quakes), len(quakeSkips), len(boundaries), len(plateSkips))
	printLegendBuckets(quakes)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

func validateDecode(name string, skipped []domain.SkippedFeature) *phase {
	p := &phase{name: name}
	for _, s := range skipped {
		p.errorf("%s", s.Error())
	}
	return p
}

// validateMarkers checks that every feature the decoder kept produced exactly
// one marker carrying that feature's id, magnitude and position, and flags
// duplicate event IDs.
func validateMarkers(fc *geojson.FeatureCollection, quakes []domain.Earthquake, skipped []domain.SkippedFeature) *phase {
	p := &phase{name: "Marker fidelity"}
	markers := render.RenderEarthquakes(quakes)

	if got, want := len(markers)+len(skipped), len(fc.Features); got != want {
		p.errorf("%d markers + %d skipped != %d features", len(markers), len(skipped), want)
	}

	skippedAt := make(map[int]bool, len(skipped))
	for _, s := range skipped {
		skippedAt[s.Index] = true
	}

	seen := make(map[string]int, len(markers))
	next := 0
	for i, f := range fc.Features {
		if skippedAt[i] {
			continue
		}
		if next >= len(markers) {
			p.errorf("feature %d: no marker", i)
			continue
		}
		m := markers[next]
		next++

		if id := rawID(f); m.EarthquakeID != id {
			p.errorf("feature %d: marker id %q, want %q", i, m.EarthquakeID, id)
		}
		if prev, ok := seen[m.EarthquakeID]; ok && m.EarthquakeID != "" {
			p.errorf("duplicate id %q at features %d and %d", m.EarthquakeID, prev, i)
		}
		seen[m.EarthquakeID] = i

		if mag, ok := f.Properties["mag"].(float64); ok && m.Magnitude != mag {
			p.errorf("%s: marker magnitude %v, feed says %v", m.EarthquakeID, m.Magnitude, mag)
		}
		if pt, ok := f.Geometry.(orb.Point); ok && !m.Point.Equal(pt) {
			p.errorf("%s: marker at %v, feed says %v", m.EarthquakeID, m.Point, pt)
		}
		if m.Point.Lat() < -90 || m.Point.Lat() > 90 || m.Point.Lon() < -180 || m.Point.Lon() > 180 {
			p.errorf("%s: coordinates out of range %v", m.EarthquakeID, m.Point)
		}
	}
	return p
}

func rawID(f *geojson.Feature) string {
	if f == nil || f.ID == nil {
		return ""
	}
	return fmt.Sprint(f.ID)
}

func validateBoundaries(boundaries []domain.Boundary) *phase {
	p := &phase{name: "Plate boundary geometry"}
	for i, b := range render.RenderBoundaries(boundaries) {
		if b.Geometry == nil || (b.Geometry.Dimensions() != 1 && b.Geometry.Dimensions() != 2) {
			p.errorf("boundary %d (%s): unexpected geometry", i, b.Name)
		}
	}
	return p
}

func printLegendBuckets(quakes []domain.Earthquake) {
	grades := domain.LegendGrades
	counts := make([]int, len(grades))
	for _, q := range quakes {
		bucket := 0
		for i, g := range grades {
			if q.Magnitude >= g {
				bucket = i
			}
		}
		counts[bucket]++
	}

	rows := domain.LegendRows(grades)
	fmt.Println("Legend buckets:")
	for i, r := range rows {
		fmt.Printf("  %-6s %d\n", r.Label, counts[i])
	}
}
