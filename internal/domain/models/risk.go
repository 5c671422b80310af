package models

import "time"

// ScoreResult is the deterministic scorecard output for one PD estimate.
type ScoreResult struct {
	Score int    `json:"score"`
	Band  string `json:"band"`
}

// PricingQuote is the suggested monthly rate for one PD estimate, already
// clamped to the configured caps.
type PricingQuote struct {
	RateMonthly float64 `json:"rate_monthly"`
}

// UnitEconomics breaks the minimum acceptable monthly rate into its
// components. All rates are monthly decimals, ELOverPrincipal is a fraction
// of the principal.
type UnitEconomics struct {
	PD                   float64 `json:"pd_12m"`
	LGD                  float64 `json:"lgd"`
	ELOverPrincipal      float64 `json:"el_over_P"`
	RiskComponentMonthly float64 `json:"risk_component_monthly"`
	Funding              float64 `json:"funding"`
	Opex                 float64 `json:"opex"`
	MarginTarget         float64 `json:"margin_target"`
	IMin                 float64 `json:"i_min"`
}

// Installment is one row of a PRICE amortization schedule. Money amounts are
// rounded to cents for presentation; the running balance is kept exact
// internally.
type Installment struct {
	Period         int     `json:"period"`
	OpeningBalance float64 `json:"opening_balance"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	Amount         float64 `json:"installment"`
	ClosingBalance float64 `json:"closing_balance"`
}

// CETResult is the effective total cost of credit as an internal rate of
// return over the disbursement/installment cash flows.
type CETResult struct {
	Monthly float64 `json:"cet_monthly"`
	Yearly  float64 `json:"cet_yearly"`
}

// EligibilityDecision is the rule-based accept/reject outcome.
type EligibilityDecision struct {
	Eligible       bool     `json:"eligible"`
	Reasons        []string `json:"reasons"`
	Band           string   `json:"band"`
	Installment    float64  `json:"installment"`
	MonthlyIncome  float64  `json:"monthly_income"`
	MinBand        string   `json:"min_band"`
	MaxIncomeRatio float64  `json:"max_income_ratio"`
}

// DecisionEvent is the analytics record emitted after a completed scoring.
// Best-effort delivery only: nothing in the request path depends on it.
type DecisionEvent struct {
	SubjectID   string    `json:"subject_id,omitempty"`
	PD          float64   `json:"pd"`
	Score       int       `json:"score"`
	Band        string    `json:"band"`
	RateMonthly float64   `json:"rate_monthly"`
	Amount      float64   `json:"amount,omitempty"`
	TermMonths  int       `json:"term_months,omitempty"`
	Installment float64   `json:"installment,omitempty"`
	Eligible    *bool     `json:"eligible,omitempty"`
	OkToLend    *bool     `json:"ok_to_lend,omitempty"`
	ScoredAt    time.Time `json:"scored_at"`
}
