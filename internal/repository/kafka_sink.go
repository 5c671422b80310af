package repository

import (
	"context"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	"RiskDesk/pkg/kafka"
)

// KafkaSink publishes decision events to a Kafka topic, keyed by subject so
// one borrower's decisions stay in order within a partition.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaSink wraps a producer as a decision sink.
func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Send(ctx context.Context, event *models.DecisionEvent) error {
	return s.producer.Publish(ctx, s.topic, []byte(event.SubjectID), event)
}

func (s *KafkaSink) SendBatch(ctx context.Context, events []*models.DecisionEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafka.Message{Key: []byte(e.SubjectID), Value: e})
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

var _ repository.DecisionSink = (*KafkaSink)(nil)
