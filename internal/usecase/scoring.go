// Package usecase orchestrates the scoring pipeline: features, probability,
// score and band, rate, unit economics, installment and effective cost,
// eligibility. Every stage is a pure function of its inputs; any stage
// failure aborts the request with no partial response.
package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	"RiskDesk/internal/services/eligibility"
	"RiskDesk/internal/services/features"
	"RiskDesk/internal/services/finmath"
	"RiskDesk/internal/services/registry"
	"RiskDesk/pkg/config"
	"RiskDesk/pkg/logger"
)

// Scoring runs the end-to-end risk decision for score, underwrite and
// schedule requests.
type Scoring struct {
	registry  *registry.Registry
	builder   *features.Builder
	processor *DecisionProcessor
	metrics   repository.Metrics
	cfg       *config.Config
	log       *logger.Logger
}

// NewScoring wires the scoring pipeline.
func NewScoring(
	reg *registry.Registry,
	builder *features.Builder,
	processor *DecisionProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *Scoring {
	return &Scoring{
		registry:  reg,
		builder:   builder,
		processor: processor,
		metrics:   metrics,
		cfg:       cfg,
		log:       log,
	}
}

// Score prices a caller-supplied feature vector. Amount and term are
// optional; without them the response carries no installment, CET or unit
// economics.
func (s *Scoring) Score(ctx context.Context, req *models.ScoreRequest) (*models.ScoreResponse, error) {
	if err := req.Features.Validate(); err != nil {
		return nil, &features.BuildError{Kind: features.KindMissingField, Msg: "feature vector", Err: err}
	}

	resp, err := s.scoreVector(ctx, req.Features, req.Amount, req.TermMonths, req.Fees)
	if err != nil {
		return nil, err
	}

	s.emitDecision("", req.Amount, req.TermMonths, resp, nil)
	return resp, nil
}

// Underwrite builds the subject's feature vector from the upstream providers,
// scores it, and applies the eligibility gate.
func (s *Scoring) Underwrite(ctx context.Context, req *models.UnderwriteRequest) (*models.UnderwriteResponse, error) {
	start := time.Now()
	fv, err := s.builder.Build(ctx, req.SubjectID, req.Overrides)
	if err != nil {
		var be *features.BuildError
		if errors.As(err, &be) {
			s.metrics.RecordError(string(be.Kind))
		}
		return nil, err
	}
	s.metrics.RecordLatency("features", time.Since(start).Seconds())

	score, err := s.scoreVector(ctx, fv, &req.Amount, &req.TermMonths, req.Fees)
	if err != nil {
		return nil, err
	}

	resp := &models.UnderwriteResponse{ScoreResponse: *score, Features: fv}

	if score.Installment != nil {
		dec := eligibility.Evaluate(
			score.Band, *score.Installment, fv.MonthlyIncome(),
			s.minBand(), s.maxIncomeRatio(),
		)
		resp.Eligibility = &dec
	}

	s.emitDecision(req.SubjectID, &req.Amount, &req.TermMonths, score, resp.Eligibility)
	return resp, nil
}

// Schedule computes a PRICE amortization schedule for explicit terms.
func (s *Scoring) Schedule(req *models.ScheduleRequest) (*models.ScheduleResponse, error) {
	pmt, err := finmath.PMT(req.RateMonthly, req.TermMonths, req.Amount)
	if err != nil {
		return nil, err
	}
	rows, err := finmath.AmortizationSchedule(req.Amount, req.RateMonthly, req.TermMonths)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleResponse{Installment: round2(pmt), Schedule: rows}, nil
}

// Info exposes the loaded scorecard and pricing configuration.
func (s *Scoring) Info() (map[string]interface{}, error) {
	sc, err := s.registry.Scorecard()
	if err != nil {
		return nil, err
	}
	eng, err := s.registry.Pricing()
	if err != nil {
		return nil, err
	}

	scoreMin, scoreMax := sc.ScoreRange()
	return map[string]interface{}{
		"score_range": map[string]int{"min": scoreMin, "max": scoreMax},
		"pricing":     eng.Info(),
		"model":       s.modelInfo(),
		"eligibility": map[string]interface{}{
			"min_band":         s.minBand(),
			"max_income_ratio": s.maxIncomeRatio(),
		},
	}, nil
}

// scoreVector runs probability, scorecard, pricing, unit economics and the
// installment/CET block over a complete feature vector.
func (s *Scoring) scoreVector(ctx context.Context, fv models.FeatureVector, amount *float64, termMonths *int, fees *models.Fees) (*models.ScoreResponse, error) {
	clf, err := s.registry.Classifier()
	if err != nil {
		return nil, err
	}
	sc, err := s.registry.Scorecard()
	if err != nil {
		return nil, err
	}
	eng, err := s.registry.Pricing()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pd, err := clf.Predict(ctx, fv)
	if err != nil {
		s.metrics.RecordError("predict")
		return nil, err
	}
	s.metrics.RecordLatency("predict", time.Since(start).Seconds())
	s.metrics.RecordPD(pd)

	score, band := sc.ScoreAndBand(pd)
	rate := eng.SuggestRate(pd)

	resp := &models.ScoreResponse{
		PD:            round6(pd),
		Score:         score,
		Band:          band,
		RateMonthly:   round6(rate),
		RateYearlyEff: round6(finmath.EffAnnualFromMonthly(rate)),
		Model:         s.modelInfo(),
		Pricing:       eng.Info(),
		Fees:          fees,
	}

	if termMonths != nil {
		ue := eng.UnitEconomics(pd, *termMonths)
		resp.UnitEconomics = &models.UnitEconomicsResponse{
			ELOverPrincipal:      round6(ue.ELOverPrincipal),
			RiskComponentMonthly: round6(ue.RiskComponentMonthly),
			Funding:              ue.Funding,
			Opex:                 ue.Opex,
			MarginTarget:         ue.MarginTarget,
			IMinMonthly:          round6(ue.IMin),
			RateVsMinBps:         int(math.Round((rate - ue.IMin) * 10000)),
			OkToLend:             rate >= ue.IMin,
		}
	}

	if amount != nil && termMonths != nil {
		pmt, err := finmath.PMT(rate, *termMonths, *amount)
		if err != nil {
			return nil, err
		}

		cet, err := finmath.CETFromFlows(*amount, rate, *termMonths, fees)
		switch {
		case errors.Is(err, finmath.ErrNumericDivergence):
			// Locally recovered: score, band and rate still stand, the
			// installment/CET block is withheld with a diagnostic.
			s.metrics.RecordError("numeric-divergence")
			resp.FeesError = err.Error()
		case err != nil:
			return nil, err
		default:
			installment := round2(pmt)
			cetM, cetY := round6(cet.Monthly), round6(cet.Yearly)
			resp.Installment = &installment
			resp.CETMonthly = &cetM
			resp.CETYearly = &cetY
		}
	}

	return resp, nil
}

func (s *Scoring) emitDecision(subjectID string, amount *float64, termMonths *int, score *models.ScoreResponse, elig *models.EligibilityDecision) {
	event := &models.DecisionEvent{
		SubjectID:   subjectID,
		PD:          score.PD,
		Score:       score.Score,
		Band:        score.Band,
		RateMonthly: score.RateMonthly,
		ScoredAt:    time.Now().UTC(),
	}
	if amount != nil {
		event.Amount = *amount
	}
	if termMonths != nil {
		event.TermMonths = *termMonths
	}
	if score.Installment != nil {
		event.Installment = *score.Installment
	}
	if elig != nil {
		eligible := elig.Eligible
		event.Eligible = &eligible
	}
	if score.UnitEconomics != nil {
		ok := score.UnitEconomics.OkToLend
		event.OkToLend = &ok
	}

	eligible := elig == nil || elig.Eligible
	s.metrics.RecordDecision(score.Band, eligible)
	s.processor.Submit(event)
}

func (s *Scoring) modelInfo() models.ModelInfo {
	info := models.ModelInfo{Name: s.cfg.Model.Type}
	if s.cfg.Model.Type == "http" {
		info.Path = s.cfg.Model.ServiceURL
	} else {
		info.Path = s.cfg.Model.ArtifactPath
	}
	return info
}

func (s *Scoring) minBand() string {
	if s.cfg.Eligibility.MinBand != "" {
		return s.cfg.Eligibility.MinBand
	}
	return "D"
}

func (s *Scoring) maxIncomeRatio() float64 {
	if s.cfg.Eligibility.MaxIncomeRatio > 0 {
		return s.cfg.Eligibility.MaxIncomeRatio
	}
	return 0.35
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
