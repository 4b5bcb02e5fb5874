//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-service/internal/config"
	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testExportTopic = "test-daily-aggregates"

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp",
		fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAggregateExport verifies that aggregates installed in the store
// round-trip through Kafka with their headers intact.
func TestAggregateExport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testExportTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaExportTopic: testExportTopic,
	}

	// Install two days of precipitation so the export has something to publish.
	st := store.New()
	desc, ok := domain.DescribeVariable(domain.VarPrecipitation)
	require.True(t, ok)

	b := store.NewBuilder(desc)
	for hour := 0; hour < 24; hour += 3 {
		b.Add(domain.Reading{
			Date:            domain.Date(2023, time.July, 4),
			TimeOfDay:       fmt.Sprintf("%02d:00:00", hour),
			NormalizedValue: 1.5,
		})
	}
	b.Add(domain.Reading{Date: domain.Date(2023, time.July, 5), NormalizedValue: 0.2})
	st.Install(b)

	aggregates := st.DailyAggregates(domain.VarPrecipitation)
	require.Len(t, aggregates, 2)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.ExportBatch(ctx, aggregates))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testExportTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]domain.DailyAggregate, 0, len(aggregates))
	for len(received) < len(aggregates) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from export topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, domain.VarPrecipitation, headers["variable"])
		assert.NotEmpty(t, headers["date"])

		var agg domain.DailyAggregate
		require.NoError(t, json.Unmarshal(msg.Value, &agg))
		assert.Equal(t, string(msg.Key), agg.VariableID+"|"+headers["date"])
		received = append(received, agg)
	}

	// Messages arrive in publish order, which follows date order.
	require.Len(t, received, 2)
	assert.Equal(t, domain.Date(2023, time.July, 4), received[0].Date)
	assert.Equal(t, 8, received[0].ReadingCount)
	require.NotNil(t, received[0].DerivedTotal)
	assert.InDelta(t, 36.0, *received[0].DerivedTotal, 1e-9)

	assert.Equal(t, domain.Date(2023, time.July, 5), received[1].Date)
	assert.Equal(t, 1, received[1].ReadingCount)
}
