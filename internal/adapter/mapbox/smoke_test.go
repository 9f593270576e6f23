//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// These tests hit the real Mapbox API and require a valid API_KEY env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) (*Client, string) {
	t.Helper()
	token := os.Getenv("API_KEY")
	if token == "" {
		t.Fatal("API_KEY must be set to run smoke tests")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, token
}

func TestSmoke_FetchTile_AllLayers(t *testing.T) {
	c, token := smokeClient(t)

	for _, l := range BaseLayers(token) {
		t.Run(l.Slug, func(t *testing.T) {
			tile, err := c.FetchTile(context.Background(), l, maptile.New(3, 6, 4))
			require.NoError(t, err)
			assert.NotEmpty(t, tile.Data)
			assert.Contains(t, tile.ContentType, "image/")
		})
	}
}

func TestSmoke_CachedTileSource(t *testing.T) {
	c, token := smokeClient(t)
	cached := NewCachedTileSource(c, 10, observability.NewMetricsForTesting())
	layer := BaseLayers(token)[2]

	t1, err := cached.FetchTile(context.Background(), layer, maptile.New(0, 0, 1))
	require.NoError(t, err)

	t2, err := cached.FetchTile(context.Background(), layer, maptile.New(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}
