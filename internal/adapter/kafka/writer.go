package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/config"
	"github.com/couchcryptid/climate-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes daily aggregates to a Kafka topic so downstream
// consumers can pick them up after a load completes.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaExportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// ExportBatch serializes and publishes daily aggregates in a single
// WriteMessages call for efficiency.
func (w *Writer) ExportBatch(ctx context.Context, aggregates []domain.DailyAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(aggregates))
	for i := range aggregates {
		msg, err := serializeToMessage(aggregates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("exported daily aggregates", "count", len(aggregates))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DailyAggregate into a Kafka message keyed
// by variable and date, so compacted topics keep the latest aggregate per day.
func serializeToMessage(agg domain.DailyAggregate) (kafkago.Message, error) {
	data, err := json.Marshal(agg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily aggregate: %w", err)
	}
	date := agg.Date.Format(time.DateOnly)
	return kafkago.Message{
		Key:   []byte(agg.VariableID + "|" + date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variable", Value: []byte(agg.VariableID)},
			{Key: "date", Value: []byte(date)},
		},
	}, nil
}
