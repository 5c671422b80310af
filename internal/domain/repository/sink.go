package repository

import (
	"context"

	"RiskDesk/internal/domain/models"
)

// DecisionSink receives decision events for downstream analytics. Delivery is
// best-effort: the scoring path never blocks on, retries, or reads back from
// a sink.
type DecisionSink interface {
	Send(ctx context.Context, event *models.DecisionEvent) error
	SendBatch(ctx context.Context, events []*models.DecisionEvent) error
	Close() error
}

// Metrics records operational counters for the scoring pipeline.
type Metrics interface {
	RecordDecision(band string, eligible bool)
	RecordEventSent(backend string)
	RecordError(kind string)
	RecordPD(pd float64)
	RecordLatency(stage string, seconds float64)
}
