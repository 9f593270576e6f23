// Package feed fetches the earthquake and plate-boundary GeoJSON feeds.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// Feed names used in logs and metric labels.
const (
	Earthquakes = "earthquakes"
	Plates      = "plates"
)

// maxBodyBytes bounds a feed payload. The weekly USGS feed is around 10 MB.
const maxBodyBytes = 64 << 20

// Client implements render.Source over HTTP.
type Client struct {
	httpClient     *http.Client
	earthquakesURL string
	platesURL      string
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates a feed client. timeout bounds each fetch including the body read.
func NewClient(earthquakesURL, platesURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		earthquakesURL: earthquakesURL,
		platesURL:      platesURL,
		metrics:        metrics,
		logger:         logger,
	}
}

// FetchEarthquakes downloads the earthquake feed and decodes its point features.
func (c *Client) FetchEarthquakes(ctx context.Context) ([]domain.Earthquake, error) {
	fc, err := c.fetch(ctx, Earthquakes, c.earthquakesURL)
	if err != nil {
		return nil, err
	}
	quakes, skipped := domain.DecodeEarthquakes(fc)
	c.reportSkipped(Earthquakes, skipped)
	return quakes, nil
}

// FetchBoundaries downloads the plate feed and decodes its line and polygon features.
func (c *Client) FetchBoundaries(ctx context.Context) ([]domain.Boundary, error) {
	fc, err := c.fetch(ctx, Plates, c.platesURL)
	if err != nil {
		return nil, err
	}
	boundaries, skipped := domain.DecodeBoundaries(fc)
	c.reportSkipped(Plates, skipped)
	return boundaries, nil
}

func (c *Client) fetch(ctx context.Context, name, url string) (*geojson.FeatureCollection, error) {
	start := time.Now()
	fc, err := c.doRequest(ctx, name, url)
	c.metrics.FeedDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	c.metrics.FeedRequests.WithLabelValues(name, "success").Inc()
	c.logger.Debug("feed fetched", "feed", name, "features", len(fc.Features), "duration", time.Since(start))
	return fc, nil
}

func (c *Client) doRequest(ctx context.Context, name, url string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s feed request: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s feed error: status %d: %s", name, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s feed: %w", name, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", name, err)
	}
	return fc, nil
}

func (c *Client) reportSkipped(name string, skipped []domain.SkippedFeature) {
	if len(skipped) == 0 {
		return
	}
	c.metrics.FeaturesSkipped.WithLabelValues(name).Add(float64(len(skipped)))
	for _, s := range skipped {
		c.logger.Debug("skipping malformed feature", "feed", name, "index", s.Index, "id", s.ID, "error", s.Err)
	}
	c.logger.Warn("feed contained malformed features", "feed", name, "skipped", len(skipped))
}
