package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	"github.com/couchcryptid/quake-map-service/internal/adapter/feed"
	kafkaadapter "github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	view, err := mapview.New(mapview.Options{
		ElementID:       "map",
		Center:          mapview.LatLng{Lat: cfg.CenterLat, Lon: cfg.CenterLon},
		Zoom:            cfg.Zoom,
		BaseLayers:      mapbox.BaseLayers(cfg.APIKey),
		DefaultBase:     mapbox.Outdoors,
		Overlays:        []string{mapview.EarthquakesOverlay, mapview.PlatesOverlay},
		DefaultOverlays: []string{mapview.EarthquakesOverlay},
	})
	if err != nil {
		logger.Error("failed to build map", "error", err)
		os.Exit(1)
	}

	// Marker publication is feature-flagged via KAFKA_BROKERS.
	var (
		sink   render.MarkerSink
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("marker publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("marker publication disabled")
	}

	feeds := feed.NewClient(cfg.EarthquakeFeedURL, cfg.PlatesFeedURL, cfg.FeedTimeout, metrics, logger)
	renderer := render.New(feeds, view, sink, logger, metrics)

	tiles := mapbox.NewCachedTileSource(mapbox.NewClient(cfg.TileTimeout, metrics, logger), cfg.TileCacheSize, metrics)
	logger.Info("tile proxy ready", "cache_size", cfg.TileCacheSize, "timeout", cfg.TileTimeout)

	srv := httpadapter.NewServer(cfg.HTTPAddr, view, tiles, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Populate overlays.
	go func() {
		if err := renderer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("render error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
