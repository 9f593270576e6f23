package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

const markerFeed = `{"type":"FeatureCollection","features":[
	{"type":"Feature","id":"a","properties":{"mag":2.5,"place":"Somewhere"},"geometry":{"type":"Point","coordinates":[10,20]}},
	{"type":"Feature","id":"skip","properties":{"mag":null},"geometry":{"type":"Point","coordinates":[0,0]}},
	{"type":"Feature","id":"b","properties":{"mag":3},"geometry":{"type":"Point","coordinates":[30,40]}}]}`

func decodeFeed(t *testing.T, raw string) (*geojson.FeatureCollection, []domain.Earthquake, []domain.SkippedFeature) {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(raw))
	require.NoError(t, err)
	quakes, skipped := domain.DecodeEarthquakes(fc)
	return fc, quakes, skipped
}

func TestValidateMarkers_MatchesFeed(t *testing.T) {
	fc, quakes, skipped := decodeFeed(t, markerFeed)
	require.Len(t, quakes, 2)
	require.Len(t, skipped, 1)

	p := validateMarkers(fc, quakes, skipped)
	assert.True(t, p.passed(), p.errors)
}

func TestValidateMarkers_DuplicateAndOutOfRange(t *testing.T) {
	fc, quakes, skipped := decodeFeed(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"a","properties":{"mag":2.5},"geometry":{"type":"Point","coordinates":[10,20]}},
		{"type":"Feature","id":"a","properties":{"mag":1},"geometry":{"type":"Point","coordinates":[10,20]}},
		{"type":"Feature","id":"b","properties":{"mag":3},"geometry":{"type":"Point","coordinates":[200,20]}}]}`)

	p := validateMarkers(fc, quakes, skipped)
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], `duplicate id "a"`)
	assert.Contains(t, p.errors[1], "coordinates out of range")
}

func TestValidateMarkers_DetectsDrift(t *testing.T) {
	fc, quakes, skipped := decodeFeed(t, markerFeed)
	quakes[0].Magnitude = 9.9
	quakes[1].Point = orb.Point{40, 30}

	p := validateMarkers(fc, quakes, skipped)
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "a: marker magnitude 9.9, feed says 2.5")
	assert.Contains(t, p.errors[1], "b: marker at")
}

func TestValidateMarkers_DroppedFeature(t *testing.T) {
	fc, quakes, skipped := decodeFeed(t, markerFeed)

	p := validateMarkers(fc, quakes[:1], skipped)
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "1 markers + 1 skipped != 3 features")
	assert.Contains(t, p.errors[1], "feature 2: no marker")
}

func TestValidateDecode(t *testing.T) {
	p := validateDecode("decode", []domain.SkippedFeature{{Index: 3, ID: "x", Err: domain.ErrMissingMagnitude}})
	assert.False(t, p.passed())
	assert.Equal(t, []string{"feature 3 (x): missing magnitude"}, p.errors)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	quakes := filepath.Join(dir, "quakes.geojson")
	plates := filepath.Join(dir, "plates.json")

	require.NoError(t, os.WriteFile(quakes, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"us1","properties":{"mag":4.5,"place":"Test Ridge","time":0},
		 "geometry":{"type":"Point","coordinates":[-120.5,36.2,10]}}]}`), 0o600))
	require.NoError(t, os.WriteFile(plates, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"Name":"AF-AN"},
		 "geometry":{"type":"LineString","coordinates":[[-0.4,-54.8],[0.2,-54.6]]}}]}`), 0o600))

	assert.Equal(t, 0, run(quakes, plates))

	require.NoError(t, os.WriteFile(quakes, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"us2","properties":{"mag":null},
		 "geometry":{"type":"Point","coordinates":[0,0]}}]}`), 0o600))
	assert.Equal(t, 1, run(quakes, plates))

	assert.Equal(t, 1, run(filepath.Join(dir, "missing.geojson"), plates))
}
