package models

// Fees are the optional charges folded into the CET cash flows.
type Fees struct {
	Upfront              float64 `json:"upfront,omitempty"`
	Monthly              float64 `json:"monthly,omitempty"`
	DisbursementDiscount float64 `json:"disbursement_discount,omitempty"`
}

// ScoreRequest scores a caller-supplied feature vector. Amount and term are
// optional: without a term the response carries no unit economics, without
// both the response carries no installment or CET.
type ScoreRequest struct {
	Features   FeatureVector `json:"features" validate:"required"`
	Amount     *float64      `json:"amount,omitempty" validate:"omitempty,gt=0"`
	TermMonths *int          `json:"term_months,omitempty" validate:"omitempty,gt=0"`
	Fees       *Fees         `json:"fees,omitempty"`
}

// UnderwriteRequest builds the feature vector from upstream providers for one
// subject, then scores it.
type UnderwriteRequest struct {
	SubjectID  string              `json:"cpf" validate:"required"`
	Amount     float64             `json:"amount" validate:"required,gt=0"`
	TermMonths int                 `json:"term_months" validate:"required,gt=0,lte=120"`
	Overrides  map[string]*float64 `json:"overrides,omitempty"`
	Fees       *Fees               `json:"fees,omitempty"`
}

// ScheduleRequest computes a PRICE amortization schedule.
type ScheduleRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	RateMonthly float64 `json:"rate_monthly" validate:"gte=0"`
	TermMonths  int     `json:"term_months" validate:"required,gt=0,lte=120"`
}

// ModelInfo identifies the classifier that produced a PD estimate.
type ModelInfo struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// PricingInfo describes the pricing artifact used for a quote.
type PricingInfo struct {
	Mode       string             `json:"mode"`
	PolyDegree int                `json:"poly_degree,omitempty"`
	Caps       map[string]float64 `json:"caps,omitempty"`
}

// UnitEconomicsResponse is the unit-economics block of a score response.
type UnitEconomicsResponse struct {
	ELOverPrincipal      float64 `json:"el_over_P"`
	RiskComponentMonthly float64 `json:"risk_component_monthly"`
	Funding              float64 `json:"funding"`
	Opex                 float64 `json:"opex"`
	MarginTarget         float64 `json:"margin_target"`
	IMinMonthly          float64 `json:"i_min_monthly"`
	RateVsMinBps         int     `json:"rate_vs_min_bps"`
	OkToLend             bool    `json:"ok_to_lend"`
}

// ScoreResponse is the scoring result. Installment and CET fields are null
// when the term/amount were not supplied or when the IRR solver failed; in
// the latter case FeesError explains why.
type ScoreResponse struct {
	PD            float64                `json:"pd"`
	Score         int                    `json:"score"`
	Band          string                 `json:"band"`
	RateMonthly   float64                `json:"rate_monthly"`
	RateYearlyEff float64                `json:"rate_yearly_eff"`
	Model         ModelInfo              `json:"model"`
	Pricing       PricingInfo            `json:"pricing"`
	UnitEconomics *UnitEconomicsResponse `json:"unit_economics,omitempty"`
	Installment   *float64               `json:"installment"`
	CETMonthly    *float64               `json:"cet_monthly"`
	CETYearly     *float64               `json:"cet_yearly"`
	Fees          *Fees                  `json:"fees,omitempty"`
	FeesError     string                 `json:"fees_error,omitempty"`
}

// UnderwriteResponse extends the score response with the features that were
// built and the eligibility gate outcome.
type UnderwriteResponse struct {
	ScoreResponse
	Features    FeatureVector        `json:"features"`
	Eligibility *EligibilityDecision `json:"eligibility,omitempty"`
}

// ScheduleResponse carries an amortization schedule.
type ScheduleResponse struct {
	Installment float64       `json:"installment"`
	Schedule    []Installment `json:"schedule"`
}
