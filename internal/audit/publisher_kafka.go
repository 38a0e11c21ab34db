package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher fans attempt records out to a Kafka topic for analytics.
// Production is asynchronous and best-effort: delivery failures are logged
// and never propagated to the orchestration path.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects a producer to the given brokers. Returns nil
// when no brokers are configured.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// attemptEvent is the JSON wire shape published to Kafka.
type attemptEvent struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registration_number"`
	ProviderRef        string `json:"provider_ref"`
	Variant            string `json:"variant"`
	Outcome            string `json:"outcome"`
	StatusCode         int    `json:"status_code"`
	Message            string `json:"message,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// Publish produces one attempt event keyed by registration number so all
// attempts for the same vehicle land in the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, attempt Attempt) error {
	payload, err := json.Marshal(attemptEvent{
		ID:                 attempt.ID.String(),
		RegistrationNumber: attempt.RegistrationNumber,
		ProviderRef:        attempt.ProviderRef,
		Variant:            attempt.Variant,
		Outcome:            string(attempt.Outcome),
		StatusCode:         attempt.StatusCode,
		Message:            attempt.Message,
		CreatedAt:          attempt.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal attempt event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(attempt.RegistrationNumber),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("kafka produce failed",
				"topic", p.topic,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the producer.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
