package mapview

import (
	"sync"

	"github.com/paulmach/orb/geojson"
)

// Layer is anything an overlay can hold and serve as GeoJSON.
type Layer interface {
	Feature() *geojson.Feature
}

// Overlay is a named, toggleable group of rendered layers. Layers are only
// ever appended.
type Overlay struct {
	name string
	slug string

	mu     sync.RWMutex
	layers []Layer
}

func newOverlay(name string) *Overlay {
	return &Overlay{name: name, slug: Slugify(name)}
}

// Name returns the display name.
func (o *Overlay) Name() string { return o.name }

// Slug returns the URL-safe name.
func (o *Overlay) Slug() string { return o.slug }

// AddLayers appends layers to the overlay.
func (o *Overlay) AddLayers(layers ...Layer) {
	if len(layers) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.layers = append(o.layers, layers...)
}

// Len returns the number of child layers.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.layers)
}

// Layers returns a copy of the child layers in insertion order.
func (o *Overlay) Layers() []Layer {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Layer, len(o.layers))
	copy(out, o.layers)
	return out
}

// FeatureCollection encodes the overlay contents as GeoJSON.
func (o *Overlay) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range o.Layers() {
		fc.Append(l.Feature())
	}
	return fc
}
