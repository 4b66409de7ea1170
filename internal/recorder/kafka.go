package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avelins/restaurant-loadgen/internal/config"
	"github.com/avelins/restaurant-loadgen/internal/entities"

	"github.com/segmentio/kafka-go"
)

type kafkaRecorder struct {
	writer *kafka.Writer
}

func NewKafkaRecorder(cfg config.Kafka) *kafkaRecorder {
	return &kafkaRecorder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (r *kafkaRecorder) Record(ctx context.Context, o entities.Outcome) error {
	data, err := json.Marshal(OutcomeFromEntity(o))
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	if err := r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.Batch),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to publish outcome: %w", err)
	}
	return nil
}

func (r *kafkaRecorder) Close() error {
	return r.writer.Close()
}
