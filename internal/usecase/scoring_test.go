package usecase

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/services/features"
	"RiskDesk/internal/services/registry"
	"RiskDesk/pkg/config"
	"RiskDesk/pkg/logger"
)

// --- fakes ---

type fakeMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	decisions int
	sent      int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}}
}

func (m *fakeMetrics) RecordDecision(string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions++
}

func (m *fakeMetrics) RecordEventSent(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordPD(float64)              {}
func (m *fakeMetrics) RecordLatency(string, float64) {}

type captureSink struct {
	mu      sync.Mutex
	batches [][]*models.DecisionEvent
}

func (s *captureSink) Send(ctx context.Context, e *models.DecisionEvent) error {
	return s.SendBatch(ctx, []*models.DecisionEvent{e})
}

func (s *captureSink) SendBatch(ctx context.Context, events []*models.DecisionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]*models.DecisionEvent, len(events))
	copy(batch, events)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

type fakeSocial struct{}

func (fakeSocial) Benefits(context.Context, string) ([]models.Benefit, error) {
	return []models.Benefit{{DescricaoSituacao: "ATIVO", DataInicio: "2023-08-10"}}, nil
}

func (fakeSocial) EmploymentRelations(context.Context, string) ([]models.EmploymentRelation, error) {
	return []models.EmploymentRelation{{DataAdmissao: "2020-01-15"}}, nil
}

type fakeOpenFinance struct{}

func (fakeOpenFinance) Identity(context.Context, string) (models.Identity, error) {
	return models.Identity{BirthDate: "1990-12-25", StartDate: "2015-03-01"}, nil
}

func (fakeOpenFinance) Accounts(context.Context, string) ([]models.Account, error) {
	return []models.Account{{AccountID: "acc-1"}}, nil
}

func (fakeOpenFinance) AccountTransactions(ctx context.Context, accountID, from, to string) ([]models.AccountTransaction, error) {
	amount := decimal.NewFromInt(1000)
	month := time.Now().UTC().Format("2006-01")
	return []models.AccountTransaction{
		{BookingDate: month + "-05", Amount: amount, CreditDebitType: "CREDIT"},
		{BookingDate: month + "-12", Amount: amount, CreditDebitType: "CREDIT"},
		{BookingDate: month + "-19", Amount: amount, CreditDebitType: "CREDIT"},
	}, nil
}

func (fakeOpenFinance) CardAccounts(context.Context, string) ([]models.CardAccount, error) {
	return []models.CardAccount{{AccountID: "card-1", CreditLimit: decimal.NewFromInt(2000)}}, nil
}

func (fakeOpenFinance) CardBills(context.Context, string, string, string) ([]models.CardBill, error) {
	return nil, nil
}

func (fakeOpenFinance) CardBillTransactions(context.Context, string, string) ([]models.CardTransaction, error) {
	return nil, nil
}

func (fakeOpenFinance) LoanContracts(context.Context, string) ([]models.LoanContract, error) {
	return nil, nil
}

func (fakeOpenFinance) LoanInstallments(context.Context, string) ([]models.LoanInstallment, error) {
	return nil, nil
}

func (fakeOpenFinance) LoanPayments(context.Context, string) ([]models.LoanPayment, error) {
	return nil, nil
}

// --- fixtures ---

const scorecardYAML = `
scorecard:
  S0: 600
  O0: 30
  PDO: 40
bands:
  A: {min: 800}
  B: {min: 700}
  C: {min: 600}
  D: {min: 500}
  E: {min: 0}
`

const pricingJSON = `{
  "poly": {"degree": 1, "coefficients": [0.012, 0.15]},
  "caps": {"min_rate_monthly": 0.012, "max_rate_monthly": 0.055}
}`

const modelJSON = `{
  "features": ["idade", "renda_media_6m"],
  "means": [40, 2000],
  "scales": [10, 1000],
  "coefficients": [-0.5, -1.0],
  "intercept": -1.0
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestScoring(t *testing.T) (*Scoring, *captureSink, *fakeMetrics) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Model.Type = "logistic"
	cfg.Model.ArtifactPath = writeFile(t, dir, "model.json", modelJSON)
	cfg.Risk.ScorecardConf = writeFile(t, dir, "scorecard.yaml", scorecardYAML)
	cfg.Risk.PricingConf = writeFile(t, dir, "pricing.json", pricingJSON)
	cfg.Eligibility.MinBand = "D"
	cfg.Eligibility.MaxIncomeRatio = 0.35

	log := logger.Nop()
	metrics := newFakeMetrics()
	sink := &captureSink{}
	processor := NewDecisionProcessor(sink, metrics, "none", 100, 50*time.Millisecond, log)
	t.Cleanup(processor.Close)

	reg := registry.New(cfg, log)
	builder := features.NewBuilder(fakeSocial{}, fakeOpenFinance{}, log)
	return NewScoring(reg, builder, processor, metrics, cfg, log), sink, metrics
}

func fullVector() models.FeatureVector {
	fv := models.FeatureVector{}
	for _, k := range models.FeatureOrder {
		fv[k] = 0
	}
	fv["idade"] = 30
	fv["renda_media_6m"] = 3000
	return fv
}

// --- tests ---

func TestScoreEndToEnd(t *testing.T) {
	s, _, _ := newTestScoring(t)

	amount, term := 10000.0, 12
	resp, err := s.Score(context.Background(), &models.ScoreRequest{
		Features:   fullVector(),
		Amount:     &amount,
		TermMonths: &term,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// z = -1 + (-0.5)(30-40)/10 + (-1)(3000-2000)/1000 = -1.5
	wantPD := 1 / (1 + math.Exp(1.5))
	if math.Abs(resp.PD-wantPD) > 1e-6 {
		t.Fatalf("pd: expected %v, got %v", wantPD, resp.PD)
	}

	wantRate := 0.012 + 0.15*wantPD
	if math.Abs(resp.RateMonthly-wantRate) > 1e-6 {
		t.Fatalf("rate: expected %v, got %v", wantRate, resp.RateMonthly)
	}

	if resp.Installment == nil || *resp.Installment <= 0 {
		t.Fatalf("expected installment, got %v", resp.Installment)
	}
	if resp.CETMonthly == nil {
		t.Fatalf("expected cet_monthly")
	}
	// Without fees the effective cost equals the contract rate.
	if math.Abs(*resp.CETMonthly-resp.RateMonthly) > 1e-4 {
		t.Fatalf("cet %v should match rate %v without fees", *resp.CETMonthly, resp.RateMonthly)
	}

	if resp.UnitEconomics == nil {
		t.Fatalf("expected unit economics with term supplied")
	}
	ue := resp.UnitEconomics
	wantIMin := 0.008 + 0.003 + wantPD*0.45*0.5 + 0.002
	if math.Abs(ue.IMinMonthly-wantIMin) > 1e-5 {
		t.Fatalf("i_min: expected %v, got %v", wantIMin, ue.IMinMonthly)
	}
	if ue.OkToLend != (resp.RateMonthly >= ue.IMinMonthly) {
		t.Fatalf("ok_to_lend inconsistent with rate and floor")
	}
}

func TestScoreWithoutTermOmitsOptionalBlocks(t *testing.T) {
	s, _, _ := newTestScoring(t)

	resp, err := s.Score(context.Background(), &models.ScoreRequest{Features: fullVector()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UnitEconomics != nil {
		t.Fatalf("unit economics should be absent without term")
	}
	if resp.Installment != nil || resp.CETMonthly != nil || resp.CETYearly != nil {
		t.Fatalf("installment and cet should be null without amount and term")
	}
	if resp.Score == 0 || resp.Band == "" {
		t.Fatalf("score and band must always be present")
	}
}

func TestScoreRejectsIncompleteVector(t *testing.T) {
	s, _, _ := newTestScoring(t)

	fv := fullVector()
	delete(fv, "idade")
	_, err := s.Score(context.Background(), &models.ScoreRequest{Features: fv})

	var be *features.BuildError
	if !errors.As(err, &be) || be.Kind != features.KindMissingField {
		t.Fatalf("expected missing-field error, got %v", err)
	}
}

func TestUnderwriteAppliesEligibilityGate(t *testing.T) {
	s, _, metrics := newTestScoring(t)

	resp, err := s.Underwrite(context.Background(), &models.UnderwriteRequest{
		SubjectID:  "12345678900",
		Amount:     10000,
		TermMonths: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := resp.Features.Validate(); err != nil {
		t.Fatalf("built vector incomplete: %v", err)
	}
	if resp.Eligibility == nil {
		t.Fatalf("expected eligibility decision")
	}
	// The fake borrower earns 500/month against a four-digit installment,
	// so the income-ratio rule must reject.
	if resp.Eligibility.Eligible {
		t.Fatalf("expected ineligible, reasons %v", resp.Eligibility.Reasons)
	}
	found := false
	for _, r := range resp.Eligibility.Reasons {
		if strings.HasPrefix(r, "parcela_acima_") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected income-ratio reason, got %v", resp.Eligibility.Reasons)
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.decisions != 1 {
		t.Fatalf("expected 1 recorded decision, got %d", metrics.decisions)
	}
}

func TestUnderwriteOverridesReachModel(t *testing.T) {
	s, _, _ := newTestScoring(t)

	low, err := s.Underwrite(context.Background(), &models.UnderwriteRequest{
		SubjectID: "1", Amount: 10000, TermMonths: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	richIncome := 50000.0
	high, err := s.Underwrite(context.Background(), &models.UnderwriteRequest{
		SubjectID: "1", Amount: 10000, TermMonths: 12,
		Overrides: map[string]*float64{"renda_media_6m": &richIncome},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Higher income lowers the default probability under this model.
	if high.PD >= low.PD {
		t.Fatalf("override should move pd: %v >= %v", high.PD, low.PD)
	}
}

func TestScheduleTerminatesAtZero(t *testing.T) {
	s, _, _ := newTestScoring(t)

	resp, err := s.Schedule(&models.ScheduleRequest{Amount: 10000, RateMonthly: 0.02, TermMonths: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Schedule) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(resp.Schedule))
	}
	last := resp.Schedule[len(resp.Schedule)-1]
	if math.Abs(last.ClosingBalance) > 0.01 {
		t.Fatalf("schedule must terminate at zero, got %v", last.ClosingBalance)
	}
}

func TestDecisionProcessorFlushesOnClose(t *testing.T) {
	log := logger.Nop()
	metrics := newFakeMetrics()
	sink := &captureSink{}
	p := NewDecisionProcessor(sink, metrics, "none", 100, time.Hour, log)

	for i := 0; i < 3; i++ {
		p.Submit(&models.DecisionEvent{Band: "C"})
	}
	p.Close()

	if got := sink.total(); got != 3 {
		t.Fatalf("expected 3 events flushed, got %d", got)
	}
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.sent != 3 {
		t.Fatalf("expected 3 sent events recorded, got %d", metrics.sent)
	}
}

func TestDecisionProcessorBatchSizeFlush(t *testing.T) {
	log := logger.Nop()
	metrics := newFakeMetrics()
	sink := &captureSink{}
	p := NewDecisionProcessor(sink, metrics, "none", 2, time.Hour, log)
	defer p.Close()

	for i := 0; i < 2; i++ {
		p.Submit(&models.DecisionEvent{Band: "B"})
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.total() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("batch was not flushed at batch size")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
