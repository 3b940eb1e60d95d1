package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/groundwater-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/groundwater-etl/internal/config"
	"github.com/couchcryptid/groundwater-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes flat records to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load serializes the records and publishes them in a single WriteMessages
// call, preserving their order within a partition.
func (w *Writer) Load(ctx context.Context, records []domain.FlatRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("records published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey groups all observations of one site and variable on the same
// partition.
func messageKey(r domain.FlatRecord) []byte {
	return []byte(r.SiteName + "|" + r.VariableName)
}

// serializeToMessage marshals a FlatRecord into a Kafka message.
func serializeToMessage(r domain.FlatRecord) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   messageKey(r),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variable_name", Value: []byte(r.VariableName)},
			{Key: "datetime", Value: []byte(r.DateTime.Format(csvfile.DateTimeLayout))},
		},
	}, nil
}
