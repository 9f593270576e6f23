package config

import (
	"errors"
	"fmt"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	defaultEarthquakeFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"
	defaultPlatesFeedURL     = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feeds.
	EarthquakeFeedURL string
	PlatesFeedURL     string
	FeedTimeout       time.Duration

	// Map view.
	CenterLat float64
	CenterLon float64
	Zoom      int

	// Tile provider (Mapbox) configuration.
	APIKey        string
	TileTimeout   time.Duration
	TileCacheSize int

	// Optional marker publication. Empty KafkaBrokers disables it.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where
// unset. An empty variable counts as unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	// Typed map and tile settings go through viper.
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("FEED_TIMEOUT", "30s")
	v.SetDefault("TILE_TIMEOUT", "10s")
	v.SetDefault("TILE_CACHE_SIZE", 1000)
	v.SetDefault("MAP_CENTER_LAT", 37.09)
	v.SetDefault("MAP_CENTER_LON", -95.71)
	v.SetDefault("MAP_ZOOM", 4)

	feedTimeout, err := positiveDuration(v, "FEED_TIMEOUT")
	if err != nil {
		return nil, err
	}
	tileTimeout, err := positiveDuration(v, "TILE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	centerLat, err := cast.ToFloat64E(v.Get("MAP_CENTER_LAT"))
	if err != nil || centerLat < -90 || centerLat > 90 {
		return nil, errors.New("invalid MAP_CENTER_LAT")
	}
	centerLon, err := cast.ToFloat64E(v.Get("MAP_CENTER_LON"))
	if err != nil || centerLon < -180 || centerLon > 180 {
		return nil, errors.New("invalid MAP_CENTER_LON")
	}
	zoom, err := cast.ToIntE(v.Get("MAP_ZOOM"))
	if err != nil || zoom < 0 || zoom > 18 {
		return nil, errors.New("invalid MAP_ZOOM")
	}

	tileCacheSize := v.GetInt("TILE_CACHE_SIZE")
	if tileCacheSize <= 0 {
		tileCacheSize = 1000
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		EarthquakeFeedURL: sharedcfg.EnvOrDefault("EARTHQUAKE_FEED_URL", defaultEarthquakeFeedURL),
		PlatesFeedURL:     sharedcfg.EnvOrDefault("PLATES_FEED_URL", defaultPlatesFeedURL),
		FeedTimeout:       feedTimeout,

		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      zoom,

		APIKey:        sharedcfg.EnvOrDefault("API_KEY", ""),
		TileTimeout:   tileTimeout,
		TileCacheSize: tileCacheSize,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquake-markers"),
	}

	if cfg.APIKey == "" {
		return nil, errors.New("API_KEY is required")
	}

	return cfg, nil
}

// KafkaEnabled reports whether rendered markers are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// positiveDuration reads a duration via viper. Unparseable values decode to 0
// and are rejected with the non-positive ones.
func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	if d := v.GetDuration(key); d > 0 {
		return d, nil
	}
	return 0, fmt.Errorf("invalid %s", key)
}
