package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
)

// Server exposes the map page, its data endpoints, the tile proxy, and
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	view       *mapview.Map
	tiles      mapbox.TileSource
	ready      sharedobs.ReadinessChecker
	page       *template.Template
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the page, /api, /tiles, /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, view *mapview.Map, tiles mapbox.TileSource, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		view:   view,
		tiles:  tiles,
		ready:  ready,
		page:   pageTemplate,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/map", s.whenRendered(s.handleMap))
	mux.HandleFunc("GET /api/overlays/{slug}", s.whenRendered(s.handleOverlay))
	mux.HandleFunc("GET /tiles/{layer}/{z}/{x}/{y}", s.handleTile)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, pageData{ElementID: s.view.ElementID()}); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// whenRendered answers 503 until the render pass has finished, so clients
// never cache a half-built map. The page retries on 503.
func (s *Server) whenRendered(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.ready.CheckReadiness(ctx); err != nil {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	overlay, err := s.view.Overlay(r.PathValue("slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	body, err := overlay.FeatureCollection().MarshalJSON()
	if err != nil {
		s.logger.Error("encode overlay failed", "overlay", overlay.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	layer, ok := s.view.BaseLayer(r.PathValue("layer"))
	if !ok {
		writeError(w, http.StatusNotFound, mapbox.ErrUnknownLayer)
		return
	}

	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if err := errors.Join(errZ, errX, errY); err != nil {
		writeError(w, http.StatusBadRequest, mapbox.ErrTileOutOfRange)
		return
	}
	tile, err := mapbox.NewTile(layer, z, x, y)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t, err := s.tiles.FetchTile(r.Context(), layer, tile)
	if err != nil {
		s.logger.Warn("tile fetch failed", "layer", layer.Slug, "z", z, "x", x, "y", y, "error", err)
		writeError(w, http.StatusBadGateway, errors.New("tile provider unavailable"))
		return
	}

	w.Header().Set("Content-Type", t.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(t.Data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
