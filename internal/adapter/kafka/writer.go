package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Writer produces rendered markers to a Kafka topic.
// It implements render.MarkerSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured marker topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishMarkers serializes and publishes all markers in a single
// WriteMessages call. Messages are keyed by earthquake ID so a replay of the
// same feed lands on the same partitions.
func (w *Writer) PublishMarkers(ctx context.Context, markers []domain.Marker) error {
	if len(markers) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(markers))
	for i := range markers {
		msg, err := serializeToMessage(markers[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write markers: %w", err)
	}
	w.logger.Debug("markers published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// markerMessage is the wire form of a rendered marker.
type markerMessage struct {
	ID         string             `json:"id"`
	Lat        float64            `json:"lat"`
	Lon        float64            `json:"lon"`
	Magnitude  float64            `json:"magnitude"`
	Style      domain.CircleStyle `json:"style"`
	Popup      string             `json:"popup"`
	RenderedAt time.Time          `json:"rendered_at"`
}

// serializeToMessage marshals a Marker into a Kafka message.
func serializeToMessage(m domain.Marker) (kafkago.Message, error) {
	data, err := json.Marshal(markerMessage{
		ID:         m.EarthquakeID,
		Lat:        m.Point.Lat(),
		Lon:        m.Point.Lon(),
		Magnitude:  m.Magnitude,
		Style:      m.Style,
		Popup:      m.Popup,
		RenderedAt: m.RenderedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize marker: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.EarthquakeID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "magnitude", Value: []byte(strconv.FormatFloat(m.Magnitude, 'f', -1, 64))},
			{Key: "rendered_at", Value: []byte(m.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
