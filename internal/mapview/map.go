// Package mapview holds the map application context: the base layer set, the
// overlay set, and the controls attached to the map. A Map is built once at
// startup and shared by the renderer, which writes overlays, and the HTTP
// handlers, which read them.
package mapview

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Overlay names shown in the layer control.
const (
	EarthquakesOverlay = "Earthquakes"
	PlatesOverlay      = "Fault Lines"
)

var (
	// ErrUnknownOverlay is returned when an overlay name or slug does not exist.
	ErrUnknownOverlay = errors.New("unknown overlay")
	// ErrUnknownBaseLayer is returned when the default base layer is not in the base layer set.
	ErrUnknownBaseLayer = errors.New("unknown base layer")
	// ErrLegendAttached is returned when a second legend is attached.
	ErrLegendAttached = errors.New("legend already attached")
)

// LatLng is a WGS-84 coordinate in latitude-first order, as map views use it.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Options configures a new Map.
type Options struct {
	ElementID       string
	Center          LatLng
	Zoom            int
	BaseLayers      []domain.TileLayer
	DefaultBase     string
	Overlays        []string
	DefaultOverlays []string
}

// LayerControl lists everything the user can toggle.
type LayerControl struct {
	BaseLayers []string `json:"base_layers"`
	Overlays   []string `json:"overlays"`
	Collapsed  bool     `json:"collapsed"`
}

// Legend is a fixed-position control summarizing the magnitude colors.
type Legend struct {
	Position string             `json:"position"`
	Title    string             `json:"title"`
	Rows     []domain.LegendRow `json:"rows"`
}

// NewMagnitudeLegend builds the bottom-right magnitude legend.
func NewMagnitudeLegend() Legend {
	return Legend{
		Position: "bottomright",
		Title:    "Magnitude",
		Rows:     domain.LegendRows(domain.LegendGrades),
	}
}

// Map is the map view with its layers and controls.
type Map struct {
	elementID  string
	center     LatLng
	zoom       int
	baseLayers []domain.TileLayer
	overlays   []*Overlay
	control    LayerControl

	mu         sync.RWMutex
	activeBase string
	visible    map[string]bool
	legend     *Legend
}

// New builds a map view. The layer control is attached uncollapsed and lists
// every base layer and overlay.
func New(opts Options) (*Map, error) {
	m := &Map{
		elementID:  opts.ElementID,
		center:     opts.Center,
		zoom:       opts.Zoom,
		baseLayers: append([]domain.TileLayer(nil), opts.BaseLayers...),
		visible:    make(map[string]bool, len(opts.Overlays)),
	}

	for _, name := range opts.Overlays {
		m.overlays = append(m.overlays, newOverlay(name))
		m.control.Overlays = append(m.control.Overlays, name)
	}
	for _, l := range m.baseLayers {
		m.control.BaseLayers = append(m.control.BaseLayers, l.Name)
	}

	if _, ok := m.BaseLayer(opts.DefaultBase); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBaseLayer, opts.DefaultBase)
	}
	m.activeBase = opts.DefaultBase

	for _, name := range opts.DefaultOverlays {
		if err := m.ShowOverlay(name); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ElementID returns the id of the page element hosting the map.
func (m *Map) ElementID() string { return m.elementID }

// BaseLayers returns the base layer set in display order.
func (m *Map) BaseLayers() []domain.TileLayer {
	return append([]domain.TileLayer(nil), m.baseLayers...)
}

// BaseLayer finds a base layer by display name or slug.
func (m *Map) BaseLayer(nameOrSlug string) (domain.TileLayer, bool) {
	for _, l := range m.baseLayers {
		if l.Name == nameOrSlug || l.Slug == nameOrSlug {
			return l, true
		}
	}
	return domain.TileLayer{}, false
}

// Overlay finds an overlay by display name or slug.
func (m *Map) Overlay(nameOrSlug string) (*Overlay, error) {
	for _, o := range m.overlays {
		if o.name == nameOrSlug || o.slug == nameOrSlug {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOverlay, nameOrSlug)
}

// ShowOverlay makes an overlay visible. Showing a visible overlay is a no-op.
func (m *Map) ShowOverlay(name string) error {
	o, err := m.Overlay(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[o.name] = true
	return nil
}

// IsVisible reports whether the named overlay is on the map.
func (m *Map) IsVisible(name string) bool {
	o, err := m.Overlay(name)
	if err != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible[o.name]
}

// VisibleOverlays counts the overlays currently on the map.
func (m *Map) VisibleOverlays() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.visible {
		if v {
			n++
		}
	}
	return n
}

// AttachLegend adds the legend control. A map carries at most one legend.
func (m *Map) AttachLegend(l Legend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.legend != nil {
		return ErrLegendAttached
	}
	m.legend = &l
	return nil
}

// Legend returns the attached legend, if any.
func (m *Map) Legend() (Legend, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.legend == nil {
		return Legend{}, false
	}
	return *m.legend, true
}

// LayerControl returns the layer control configuration.
func (m *Map) LayerControl() LayerControl {
	return LayerControl{
		BaseLayers: append([]string(nil), m.control.BaseLayers...),
		Overlays:   append([]string(nil), m.control.Overlays...),
		Collapsed:  m.control.Collapsed,
	}
}

// Slugify lowercases a display name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
