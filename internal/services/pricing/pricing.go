// Package pricing maps a default probability to a suggested monthly rate via
// a fitted polynomial curve with an optional isotonic correction, and computes
// the unit-economics floor a rate must clear before lending makes sense.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"RiskDesk/internal/domain/models"
)

// Default cost-structure assumptions, overridable per engine.
const (
	defaultLGD          = 0.45
	defaultFunding      = 0.008
	defaultOpex         = 0.003
	defaultMarginTarget = 0.002
)

// Artifact is the fitted pricing curve as persisted by the model-fitting job.
type Artifact struct {
	Poly struct {
		Degree       int       `json:"degree"`
		Coefficients []float64 `json:"coefficients"` // lowest order first
	} `json:"poly"`
	Isotonic *struct {
		X []float64 `json:"x"`
		Y []float64 `json:"y"`
	} `json:"isotonic,omitempty"`
	Caps struct {
		MinRateMonthly float64 `json:"min_rate_monthly"`
		MaxRateMonthly float64 `json:"max_rate_monthly"`
	} `json:"caps"`
}

// CostConfig carries the unit-economics cost structure.
type CostConfig struct {
	LGD          float64
	Funding      float64
	Opex         float64
	MarginTarget float64
}

// Engine prices credit from a probability estimate. Immutable after
// construction and safe for concurrent use.
type Engine struct {
	artifact *Artifact
	costs    CostConfig
}

// LoadArtifact reads and validates a pricing-curve artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse pricing artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing artifact: %w", err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if a.Poly.Degree < 1 || a.Poly.Degree > 2 {
		return fmt.Errorf("poly degree must be 1 or 2, got %d", a.Poly.Degree)
	}
	if len(a.Poly.Coefficients) != a.Poly.Degree+1 {
		return fmt.Errorf("poly degree %d needs %d coefficients, got %d",
			a.Poly.Degree, a.Poly.Degree+1, len(a.Poly.Coefficients))
	}
	if a.Caps.MaxRateMonthly <= a.Caps.MinRateMonthly {
		return fmt.Errorf("caps must satisfy min < max")
	}
	if a.Isotonic != nil {
		if len(a.Isotonic.X) < 2 || len(a.Isotonic.X) != len(a.Isotonic.Y) {
			return fmt.Errorf("isotonic breakpoints must be >= 2 pairs of equal length")
		}
		if !sort.Float64sAreSorted(a.Isotonic.X) {
			return fmt.Errorf("isotonic x breakpoints must be ascending")
		}
		for i := 1; i < len(a.Isotonic.Y); i++ {
			if a.Isotonic.Y[i] < a.Isotonic.Y[i-1] {
				return fmt.Errorf("isotonic y breakpoints must be non-decreasing")
			}
		}
	}
	return nil
}

// NewEngine builds a pricing engine; zero cost fields take defaults.
func NewEngine(artifact *Artifact, costs CostConfig) (*Engine, error) {
	if artifact == nil {
		return nil, fmt.Errorf("pricing artifact is required")
	}
	if err := artifact.validate(); err != nil {
		return nil, err
	}
	if costs.LGD == 0 {
		costs.LGD = defaultLGD
	}
	if costs.Funding == 0 {
		costs.Funding = defaultFunding
	}
	if costs.Opex == 0 {
		costs.Opex = defaultOpex
	}
	if costs.MarginTarget == 0 {
		costs.MarginTarget = defaultMarginTarget
	}
	return &Engine{artifact: artifact, costs: costs}, nil
}

// SuggestRate maps a PD to a monthly rate through the fitted curve and the
// configured caps. When an isotonic block is present it holds the monotone
// re-fit of the polynomial in probability space and supersedes the raw
// polynomial, so the curve is guaranteed non-decreasing in PD.
func (e *Engine) SuggestRate(pd float64) float64 {
	var rate float64
	if e.artifact.Isotonic != nil {
		rate = e.isotonicEval(pd)
	} else {
		rate = e.polyEval(pd)
	}
	caps := e.artifact.Caps
	return math.Max(caps.MinRateMonthly, math.Min(caps.MaxRateMonthly, rate))
}

func (e *Engine) polyEval(x float64) float64 {
	// Horner, coefficients stored lowest order first.
	coeffs := e.artifact.Poly.Coefficients
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}
	return v
}

// isotonicEval interpolates the monotone fit piecewise-linearly over PD,
// clipping to the boundary values outside the fitted range.
func (e *Engine) isotonicEval(x float64) float64 {
	xs, ys := e.artifact.Isotonic.X, e.artifact.Isotonic.Y
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	i := sort.SearchFloat64s(xs, x)
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// UnitEconomics computes the minimum acceptable monthly rate for a loan of
// the given term. Expected loss assumes a flat 50% average exposure over the
// life of the loan.
func (e *Engine) UnitEconomics(pd float64, termMonths int) models.UnitEconomics {
	n := termMonths
	if n < 1 {
		n = 1
	}
	el := pd * e.costs.LGD * 0.5
	riskMonthly := el / (float64(n) / 12.0)
	iMin := e.costs.Funding + e.costs.Opex + riskMonthly + e.costs.MarginTarget
	if min := e.artifact.Caps.MinRateMonthly; iMin < min {
		iMin = min
	}
	return models.UnitEconomics{
		PD:                   pd,
		LGD:                  e.costs.LGD,
		ELOverPrincipal:      el,
		RiskComponentMonthly: riskMonthly,
		Funding:              e.costs.Funding,
		Opex:                 e.costs.Opex,
		MarginTarget:         e.costs.MarginTarget,
		IMin:                 iMin,
	}
}

// Info describes the loaded curve for the scorecard/pricing info endpoint.
func (e *Engine) Info() models.PricingInfo {
	mode := "poly"
	if e.artifact.Isotonic != nil {
		mode = "poly+isotonic"
	}
	return models.PricingInfo{
		Mode:       mode,
		PolyDegree: e.artifact.Poly.Degree,
		Caps: map[string]float64{
			"min_rate_monthly": e.artifact.Caps.MinRateMonthly,
			"max_rate_monthly": e.artifact.Caps.MaxRateMonthly,
		},
	}
}
