// Package render performs the one fetch-and-render pass that populates the
// map's overlays and attaches its legend.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// ErrAlreadyRun is returned by a second call to Run. Overlays are populated
// once per process.
var ErrAlreadyRun = errors.New("render pass already run")

// Source provides the decoded contents of both feeds.
type Source interface {
	FetchEarthquakes(ctx context.Context) ([]domain.Earthquake, error)
	FetchBoundaries(ctx context.Context) ([]domain.Boundary, error)
}

// MarkerSink receives every rendered earthquake marker.
type MarkerSink interface {
	PublishMarkers(ctx context.Context, markers []domain.Marker) error
}

// Renderer fills the earthquake and plate overlays of a map.
type Renderer struct {
	source  Source
	view    *mapview.Map
	sink    MarkerSink
	logger  *slog.Logger
	metrics *observability.Metrics

	started    atomic.Bool
	done       atomic.Bool
	legendOnce sync.Once
}

// New creates a Renderer. Pass a nil sink to skip marker publication.
func New(source Source, view *mapview.Map, sink MarkerSink, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		source:  source,
		view:    view,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once both render steps have finished, whether or
// not their feeds were reachable.
func (r *Renderer) CheckReadiness(_ context.Context) error {
	if !r.done.Load() {
		return errors.New("render pass has not completed yet")
	}
	return nil
}

// Run fetches both feeds concurrently and renders each into its overlay as it
// arrives. Feed failures are logged and leave the overlay empty. Run fails when
// called twice, or with the context error when ctx is cancelled mid-render, in
// which case the interrupted overlay is not shown.
func (r *Renderer) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	start := time.Now()
	r.logger.Info("render started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.renderEarthquakes(gctx) })
	g.Go(func() error { return r.renderPlates(gctx) })
	err := g.Wait()

	r.done.Store(true)
	r.logger.Info("render complete", "duration", time.Since(start), "overlays_visible", r.view.VisibleOverlays())
	return err
}

func (r *Renderer) renderEarthquakes(ctx context.Context) error {
	// The legend describes the magnitude scale, not the data, so it is
	// attached even when the feed fails.
	defer r.attachLegend()

	quakes, err := r.source.FetchEarthquakes(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("render earthquakes: %w", ctxErr)
		}
		r.logger.Error("earthquake feed failed, overlay left empty", "error", err)
	}

	markers := RenderEarthquakes(quakes)
	layers := make([]mapview.Layer, len(markers))
	for i := range markers {
		layers[i] = markers[i]
	}
	if !r.addAndShow(mapview.EarthquakesOverlay, layers) {
		return nil
	}
	r.metrics.FeaturesRendered.WithLabelValues("earthquakes").Add(float64(len(markers)))
	r.logger.Info("earthquakes rendered", "markers", len(markers))

	r.publish(ctx, markers)
	return nil
}

func (r *Renderer) renderPlates(ctx context.Context) error {
	boundaries, err := r.source.FetchBoundaries(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("render plates: %w", ctxErr)
		}
		r.logger.Error("plate feed failed, overlay left empty", "error", err)
	}

	lines := RenderBoundaries(boundaries)
	layers := make([]mapview.Layer, len(lines))
	for i := range lines {
		layers[i] = lines[i]
	}
	if !r.addAndShow(mapview.PlatesOverlay, layers) {
		return nil
	}
	r.metrics.FeaturesRendered.WithLabelValues("plates").Add(float64(len(lines)))
	r.logger.Info("plate boundaries rendered", "lines", len(lines))
	return nil
}

// addAndShow appends layers to an overlay and puts it on the map.
func (r *Renderer) addAndShow(name string, layers []mapview.Layer) bool {
	overlay, err := r.view.Overlay(name)
	if err != nil {
		r.logger.Error("overlay missing from map", "overlay", name, "error", err)
		return false
	}
	overlay.AddLayers(layers...)
	if err := r.view.ShowOverlay(name); err != nil {
		r.logger.Error("show overlay failed", "overlay", name, "error", err)
		return false
	}
	r.metrics.OverlaysVisible.Set(float64(r.view.VisibleOverlays()))
	return true
}

func (r *Renderer) attachLegend() {
	r.legendOnce.Do(func() {
		if err := r.view.AttachLegend(mapview.NewMagnitudeLegend()); err != nil {
			r.logger.Warn("legend not attached", "error", err)
		}
	})
}

func (r *Renderer) publish(ctx context.Context, markers []domain.Marker) {
	if r.sink == nil || len(markers) == 0 {
		return
	}
	if err := r.sink.PublishMarkers(ctx, markers); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Error("publish markers failed", "error", err, "markers", len(markers))
		return
	}
	r.metrics.MarkersPublished.Add(float64(len(markers)))
}

// RenderEarthquakes styles each earthquake as a circle marker with a popup.
func RenderEarthquakes(quakes []domain.Earthquake) []domain.Marker {
	markers := make([]domain.Marker, 0, len(quakes))
	for _, q := range quakes {
		markers = append(markers, domain.RenderEarthquake(q))
	}
	return markers
}

// RenderBoundaries styles each plate boundary as a uniform line.
func RenderBoundaries(boundaries []domain.Boundary) []domain.BoundaryLine {
	lines := make([]domain.BoundaryLine, 0, len(boundaries))
	for _, b := range boundaries {
		lines = append(lines, domain.RenderBoundary(b))
	}
	return lines
}
