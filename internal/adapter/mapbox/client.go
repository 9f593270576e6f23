package mapbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// maxTileBytes bounds a single upstream tile.
const maxTileBytes = 4 << 20

// Tile is an image tile fetched from the provider.
type Tile struct {
	Data        []byte
	ContentType string
}

// TileSource fetches tiles for a base layer.
type TileSource interface {
	FetchTile(ctx context.Context, layer domain.TileLayer, t maptile.Tile) (Tile, error)
}

// Client fetches raster tiles from the Mapbox tile APIs.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox tile client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchTile downloads one tile of a layer.
func (c *Client) FetchTile(ctx context.Context, layer domain.TileLayer, t maptile.Tile) (Tile, error) {
	start := time.Now()
	defer func() {
		c.metrics.TileAPIDuration.WithLabelValues(layer.Slug).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TileURL(layer, t), nil)
	if err != nil {
		return Tile{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Tile{}, fmt.Errorf("%s tile request: %w", layer.Slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Tile{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return Tile{}, fmt.Errorf("read tile: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	c.logger.Debug("tile fetched", "layer", layer.Slug, "z", t.Z, "x", t.X, "y", t.Y, "bytes", len(data))
	return Tile{Data: data, ContentType: ct}, nil
}
