package repository

import (
	"context"
	"fmt"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	"RiskDesk/pkg/clickhouse"
)

const decisionsDDL = `
CREATE TABLE IF NOT EXISTS risk_decisions (
    subject_id   String,
    pd           Float64,
    score        Int32,
    band         LowCardinality(String),
    rate_monthly Float64,
    amount       Float64,
    term_months  Int32,
    installment  Float64,
    eligible     Nullable(UInt8),
    ok_to_lend   Nullable(UInt8),
    scored_at    DateTime64(3, 'UTC')
) ENGINE = MergeTree()
ORDER BY (band, scored_at)
TTL toDateTime(scored_at) + INTERVAL 180 DAY`

const insertDecision = `
INSERT INTO risk_decisions
    (subject_id, pd, score, band, rate_monthly, amount, term_months,
     installment, eligible, ok_to_lend, scored_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ClickHouseSink stores decision events in an analytics table.
type ClickHouseSink struct {
	client *clickhouse.Client
}

// NewClickHouseSink ensures the decisions table exists and wraps the client
// as a decision sink.
func NewClickHouseSink(ctx context.Context, client *clickhouse.Client) (*ClickHouseSink, error) {
	if err := client.InitSchema(ctx, []string{decisionsDDL}); err != nil {
		return nil, fmt.Errorf("decisions schema: %w", err)
	}
	return &ClickHouseSink{client: client}, nil
}

func (s *ClickHouseSink) Send(ctx context.Context, event *models.DecisionEvent) error {
	_, err := s.client.DB().ExecContext(ctx, insertDecision, decisionArgs(event)...)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) SendBatch(ctx context.Context, events []*models.DecisionEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertDecision)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare decision batch: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, decisionArgs(e)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append decision: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision batch: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.client.Close()
}

func decisionArgs(e *models.DecisionEvent) []any {
	return []any{
		e.SubjectID, e.PD, int32(e.Score), e.Band, e.RateMonthly,
		e.Amount, int32(e.TermMonths), e.Installment,
		boolPtrToUint8(e.Eligible), boolPtrToUint8(e.OkToLend), e.ScoredAt,
	}
}

func boolPtrToUint8(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return uint8(1)
	}
	return uint8(0)
}

var _ repository.DecisionSink = (*ClickHouseSink)(nil)
