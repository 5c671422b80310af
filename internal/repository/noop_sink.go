package repository

import (
	"context"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
)

// NoopSink discards decision events. Used when no analytics backend is
// configured.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) Send(context.Context, *models.DecisionEvent) error        { return nil }
func (*NoopSink) SendBatch(context.Context, []*models.DecisionEvent) error { return nil }
func (*NoopSink) Close() error                                             { return nil }

var _ repository.DecisionSink = (*NoopSink)(nil)
