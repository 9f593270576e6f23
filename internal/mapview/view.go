package mapview

// View is the serializable state of the map, consumed by the page script.
type View struct {
	ElementID  string          `json:"element_id"`
	Center     [2]float64      `json:"center"` // [lat, lon]
	Zoom       int             `json:"zoom"`
	BaseLayers []BaseLayerView `json:"base_layers"`
	Overlays   []OverlayView   `json:"overlays"`
	Control    LayerControl    `json:"layer_control"`
	Legend     *Legend         `json:"legend,omitempty"`
}

// BaseLayerView describes a base layer without its access token.
type BaseLayerView struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
	TileSize    int    `json:"tile_size,omitempty"`
	ZoomOffset  int    `json:"zoom_offset,omitempty"`
	Active      bool   `json:"active"`
}

// OverlayView describes an overlay and how many layers it holds.
type OverlayView struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Visible bool   `json:"visible"`
	Layers  int    `json:"layers"`
}

// Snapshot captures the current map state.
func (m *Map) Snapshot() View {
	m.mu.RLock()
	activeBase := m.activeBase
	visible := make(map[string]bool, len(m.visible))
	for k, v := range m.visible {
		visible[k] = v
	}
	var legend *Legend
	if m.legend != nil {
		l := *m.legend
		legend = &l
	}
	m.mu.RUnlock()

	v := View{
		ElementID: m.elementID,
		Center:    [2]float64{m.center.Lat, m.center.Lon},
		Zoom:      m.zoom,
		Control:   m.LayerControl(),
		Legend:    legend,
	}
	for _, l := range m.baseLayers {
		v.BaseLayers = append(v.BaseLayers, BaseLayerView{
			Name:        l.Name,
			Slug:        l.Slug,
			Attribution: l.Attribution,
			MaxZoom:     l.MaxZoom,
			TileSize:    l.TileSize,
			ZoomOffset:  l.ZoomOffset,
			Active:      l.Name == activeBase || l.Slug == activeBase,
		})
	}
	for _, o := range m.overlays {
		v.Overlays = append(v.Overlays, OverlayView{
			Name:    o.name,
			Slug:    o.slug,
			Visible: visible[o.name],
			Layers:  o.Len(),
		})
	}
	return v
}
