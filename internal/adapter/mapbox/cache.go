package mapbox

import (
	"context"
	"sync"

	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// CachedTileSource wraps a TileSource with an in-memory LRU cache.
type CachedTileSource struct {
	inner   TileSource
	cache   *lru[tileKey, Tile]
	metrics *observability.Metrics
}

// NewCachedTileSource creates a cache decorator around a tile source.
func NewCachedTileSource(inner TileSource, maxEntries int, metrics *observability.Metrics) *CachedTileSource {
	return &CachedTileSource{
		inner:   inner,
		cache:   newLRU[tileKey, Tile](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTileSource) FetchTile(ctx context.Context, layer domain.TileLayer, t maptile.Tile) (Tile, error) {
	key := tileKey{layer: layer.Slug, tile: t}
	if tile, ok := c.cache.get(key); ok {
		c.metrics.TileRequests.WithLabelValues(layer.Slug, "hit").Inc()
		return tile, nil
	}
	tile, err := c.inner.FetchTile(ctx, layer, t)
	if err != nil {
		c.metrics.TileRequests.WithLabelValues(layer.Slug, "error").Inc()
		return tile, err
	}
	c.metrics.TileRequests.WithLabelValues(layer.Slug, "miss").Inc()
	// Empty bodies are not cached so a truncated upstream response is retried.
	if len(tile.Data) > 0 {
		c.cache.put(key, tile)
	}
	return tile, nil
}

type tileKey struct {
	layer string
	tile  maptile.Tile
}

// lru is a mutex-guarded least-recently-used cache. Entries hang off a
// circular list anchored at root: root.next is the newest, root.prev the oldest.
type lru[K comparable, V any] struct {
	mu    sync.Mutex
	limit int
	index map[K]*node[K, V]
	root  node[K, V]
}

type node[K comparable, V any] struct {
	key        K
	val        V
	prev, next *node[K, V]
}

func newLRU[K comparable, V any](limit int) *lru[K, V] {
	c := &lru[K, V]{limit: limit, index: make(map[K]*node[K, V], limit)}
	c.root.prev, c.root.next = &c.root, &c.root
	return c
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	c.pushFront(n)
	return n.val, true
}

func (c *lru[K, V]) put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		n.val = val
		c.unlink(n)
		c.pushFront(n)
		return
	}

	n := &node[K, V]{key: key, val: val}
	c.index[key] = n
	c.pushFront(n)

	for len(c.index) > c.limit {
		oldest := c.root.prev
		c.unlink(oldest)
		delete(c.index, oldest.key)
	}
}

func (c *lru[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *lru[K, V]) pushFront(n *node[K, V]) {
	n.prev = &c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *lru[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}
