package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// Writer publishes captured record sets to a Kafka topic, one message per record.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// recordMessage is the published value: the record plus capture metadata.
type recordMessage struct {
	domain.SeismicRecord
	Key        string    `json:"key"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Publish writes every record of the capture in a single WriteMessages call.
// Records are keyed by their stable key so repeats of an event land on the
// same partition and can be compacted downstream.
func (w *Writer) Publish(ctx context.Context, records []domain.SeismicRecord, capturedAt time.Time) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i], capturedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d records: %w", len(msgs), err)
	}
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SeismicRecord into a Kafka message.
func serializeToMessage(record domain.SeismicRecord, capturedAt time.Time) (kafkago.Message, error) {
	key := record.Key()
	data, err := json.Marshal(recordMessage{SeismicRecord: record, Key: key, CapturedAt: capturedAt.UTC()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize seismic record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Time:  capturedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("earthquake")},
			{Key: "captured_at", Value: []byte(capturedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
