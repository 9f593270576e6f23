package mapbox

import (
	"errors"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Base layer display names.
const (
	Satellite = "Satellite"
	Grayscale = "Grayscale"
	Outdoors  = "Outdoors"
	DarkMap   = "Dark Map"
)

const (
	rasterURL = "https://api.tiles.mapbox.com/v4/{id}/{z}/{x}/{y}.png?access_token={accessToken}"
	stylesURL = "https://api.mapbox.com/styles/v1/{id}/tiles/{z}/{x}/{y}?access_token={accessToken}"
	darkURL   = "https://api.mapbox.com/styles/v1/mapbox/{id}/tiles/{z}/{x}/{y}?access_token={accessToken}"

	osmAttribution = `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, ` +
		`<a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`
	styleAttribution = `© <a href='https://www.mapbox.com/about/maps/'>Mapbox</a> © <a href='http://www.openstreetmap.org/copyright'>OpenStreetMap</a> ` +
		`<strong><a href='https://www.mapbox.com/map-feedback/' target='_blank'>Improve this map</a></strong>`

	maxZoom = 18
)

var (
	// ErrUnknownLayer is returned for a base layer that is not configured.
	ErrUnknownLayer = errors.New("unknown base layer")
	// ErrTileOutOfRange is returned for tile coordinates outside the layer's pyramid.
	ErrTileOutOfRange = errors.New("tile out of range")
)

// BaseLayers returns the four selectable base maps, in control order.
func BaseLayers(token string) []domain.TileLayer {
	return []domain.TileLayer{
		{
			Name:        Satellite,
			Slug:        "satellite",
			URLTemplate: rasterURL,
			Attribution: osmAttribution,
			StyleID:     "mapbox.satellite",
			AccessToken: token,
			MaxZoom:     maxZoom,
		},
		{
			Name:        Grayscale,
			Slug:        "grayscale",
			URLTemplate: stylesURL,
			Attribution: styleAttribution,
			StyleID:     "mapbox/light-v10",
			AccessToken: token,
			MaxZoom:     maxZoom,
			TileSize:    512,
			ZoomOffset:  -1,
		},
		{
			Name:        Outdoors,
			Slug:        "outdoors",
			URLTemplate: stylesURL,
			Attribution: styleAttribution,
			StyleID:     "mapbox/outdoors-v11",
			AccessToken: token,
			MaxZoom:     maxZoom,
			TileSize:    512,
			ZoomOffset:  -1,
		},
		{
			Name:        DarkMap,
			Slug:        "dark-map",
			URLTemplate: darkURL,
			Attribution: osmAttribution,
			StyleID:     "dark-v10",
			AccessToken: token,
			MaxZoom:     maxZoom,
		},
	}
}

// TileURL expands a layer's URL template for one tile.
func TileURL(l domain.TileLayer, t maptile.Tile) string {
	r := strings.NewReplacer(
		"{id}", l.StyleID,
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{accessToken}", l.AccessToken,
	)
	return r.Replace(l.URLTemplate)
}

// NewTile validates z/x/y against the layer and returns the tile.
func NewTile(l domain.TileLayer, z, x, y int) (maptile.Tile, error) {
	if z < 0 || z > l.MaxZoom {
		return maptile.Tile{}, ErrTileOutOfRange
	}
	n := 1 << uint(z)
	if x < 0 || y < 0 || x >= n || y >= n {
		return maptile.Tile{}, ErrTileOutOfRange
	}
	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}
