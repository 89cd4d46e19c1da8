// Package events publishes ingestion lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/pkg/metrics"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TypeOrdersIngested is emitted after a batch is committed.
const TypeOrdersIngested = "orders.ingested"

// Config holds Kafka configuration
type Config struct {
	Brokers []string
	Topic   string
}

// IngestedEvent describes a committed ingestion batch.
type IngestedEvent struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Records    int              `json:"records"`
	Sources    []string         `json:"sources"`
	Candidates map[string]int   `json:"candidates"`
	Inserted   map[string]int64 `json:"inserted,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	TraceID    string           `json:"trace_id,omitempty"`
}

// Publisher sends ingestion events
type Publisher interface {
	PublishIngested(ctx context.Context, evt *IngestedEvent) error
	Close() error
}

// KafkaPublisher implements Publisher
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger ectologger.Logger
}

// NewKafkaPublisher creates a publisher for cfg.Topic
func NewKafkaPublisher(cfg Config, logger ectologger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			// dev brokers may not have the topic yet
			AllowAutoTopicCreation: true,
		},
		topic:  cfg.Topic,
		logger: logger,
	}
}

func (p *KafkaPublisher) PublishIngested(ctx context.Context, evt *IngestedEvent) error {
	if evt == nil {
		return fmt.Errorf("ingestion event is nil")
	}

	ctx, span := tracing.StartSpan(ctx, "Kafka.PublishIngested")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.operation", "publish"),
	)

	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.Type == "" {
		evt.Type = TypeOrdersIngested
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.TraceID = tracing.GetTraceID(ctx)

	data, err := json.Marshal(evt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal event")
		return fmt.Errorf("failed to marshal ingestion event: %w", err)
	}

	headers := []kafka.Header{{Key: "type", Value: []byte(evt.Type)}}
	for key, value := range tracing.TraceHeaders(ctx) {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.ID),
		Value:   data,
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish event")
		metrics.EventsPublishedTotal.WithLabelValues(p.topic, "error").Inc()
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish ingestion event to Kafka topic %s", p.topic)
		return err
	}

	span.SetStatus(codes.Ok, "event published")
	metrics.EventsPublishedTotal.WithLabelValues(p.topic, "success").Inc()
	p.logger.WithContext(ctx).Debugf("Published %s event %s", evt.Type, evt.ID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishIngested(ctx context.Context, evt *IngestedEvent) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
