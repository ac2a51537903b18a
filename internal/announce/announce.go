// Package announce publishes product-completed messages to Kafka so
// downstream PPS processing can pick up new level-1c files.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"pps1c/internal/config"
)

// ProductEvent describes one finished level-1c product.
type ProductEvent struct {
	ScanID      string    `json:"scan_id"`
	Sensor      string    `json:"sensor"`
	Platform    string    `json:"platform"`
	OrbitNumber string    `json:"orbit_number"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	OutputFile  string    `json:"output_file"`
	ProducedAt  time.Time `json:"produced_at"`
}

// Announcer publishes product events. A nil *Announcer is a no-op, so the
// pipeline can hold one unconditionally.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// New creates a Kafka producer for the configured announcement topic, or nil
// when announcements are disabled.
func New(cfg *config.Config, logger *slog.Logger) *Announcer {
	if !cfg.Announce.Enabled {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Announce.Brokers...),
		Topic:        cfg.Announce.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Publish sends one product event. Errors are returned so the caller can
// decide whether a failed announcement fails the item.
func (a *Announcer) Publish(ctx context.Context, event ProductEvent) error {
	if a == nil {
		return nil
	}
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("announce product: %w", err)
	}
	if a.logger != nil {
		a.logger.Info("product announced",
			slog.String("scan_id", event.ScanID),
			slog.String("output_file", event.OutputFile))
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (a *Announcer) Close() error {
	if a == nil {
		return nil
	}
	return a.writer.Close()
}

func serializeToMessage(event ProductEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize product event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ScanID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sensor", Value: []byte(event.Sensor)},
			{Key: "produced_at", Value: []byte(event.ProducedAt.Format(time.RFC3339))},
		},
	}, nil
}
