package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map-service/internal/observability"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	headerContentType  = "Content-Type"

	quakeFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "us7000abcd",
     "properties": {"mag": 4.5, "place": "Test Ridge", "time": 0},
     "geometry": {"type": "Point", "coordinates": [-120.5, 36.2, 10.0]}},
    {"type": "Feature", "id": "nc75000001",
     "properties": {"mag": null, "place": "Under Review", "time": 1700000000000},
     "geometry": {"type": "Point", "coordinates": [-122.1, 38.0, 2.1]}}
  ]
}`

	plateFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"Name": "AF-AN", "LAYER": "plate boundary"},
     "geometry": {"type": "LineString", "coordinates": [[-0.4, -54.8], [0.2, -54.6]]}}
  ]
}`
)

func testClient(earthquakesURL, platesURL string, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		earthquakesURL: earthquakesURL,
		platesURL:      platesURL,
		metrics:        metrics,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeGeoJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchEarthquakes_SkipsNullMagnitude(t *testing.T) {
	srv := serve(t, quakeFeed)
	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, "", metrics)

	quakes, err := c.FetchEarthquakes(context.Background())
	require.NoError(t, err)
	require.Len(t, quakes, 1)

	q := quakes[0]
	assert.Equal(t, "us7000abcd", q.ID)
	assert.Equal(t, 4.5, q.Magnitude)
	assert.Equal(t, "Test Ridge", q.Place)
	assert.Equal(t, orb.Point{-120.5, 36.2}, q.Point)
	assert.Equal(t, time.Unix(0, 0).UTC(), q.Time)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeaturesSkipped.WithLabelValues(Earthquakes)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues(Earthquakes, "success")), 0)
}

func TestClient_FetchBoundaries(t *testing.T) {
	srv := serve(t, plateFeed)
	c := testClient("", srv.URL, observability.NewMetricsForTesting())

	boundaries, err := c.FetchBoundaries(context.Background())
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	assert.Equal(t, "AF-AN", boundaries[0].Name)
	assert.Equal(t, orb.LineString{{-0.4, -54.8}, {0.2, -54.6}}, boundaries[0].Geometry)
}

func TestClient_FetchEarthquakes_EmptyCollection(t *testing.T) {
	srv := serve(t, `{"type":"FeatureCollection","features":[]}`)
	c := testClient(srv.URL, "", observability.NewMetricsForTesting())

	quakes, err := c.FetchEarthquakes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quakes)
}

func TestClient_FetchEarthquakes_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, "", metrics)

	_, err := c.FetchEarthquakes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "upstream down")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues(Earthquakes, "error")), 0)
}

func TestClient_FetchBoundaries_MalformedPayload(t *testing.T) {
	srv := serve(t, `{"type":"FeatureCollection","features":[`)
	c := testClient("", srv.URL, observability.NewMetricsForTesting())

	_, err := c.FetchBoundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode plates feed")
}

func TestClient_FetchEarthquakes_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", observability.NewMetricsForTesting())
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.FetchEarthquakes(context.Background())
	require.Error(t, err)
}
