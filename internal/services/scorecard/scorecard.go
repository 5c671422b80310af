// Package scorecard converts default probabilities to scores and risk bands
// through a log-odds transform: PD -> odds -> points anchored at a reference
// score S0 with O0 odds, scaled by PDO points per doubling of the odds.
package scorecard

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Conf is the scorecard configuration artifact.
type Conf struct {
	Scorecard struct {
		S0  float64 `yaml:"S0"`
		O0  float64 `yaml:"O0"`
		PDO float64 `yaml:"PDO"`
	} `yaml:"scorecard"`
	Limits struct {
		PDFloor   *float64 `yaml:"pd_floor"`
		PDCeiling *float64 `yaml:"pd_ceiling"`
		ScoreMin  *int     `yaml:"score_min"`
		ScoreMax  *int     `yaml:"score_max"`
	} `yaml:"limits"`
	Bands map[string]struct {
		Min int `yaml:"min"`
	} `yaml:"bands"`
}

type bandCut struct {
	name string
	min  int
}

// Scorecard is immutable after construction and safe for concurrent use.
type Scorecard struct {
	s0        float64
	o0        float64
	pdo       float64
	pdFloor   float64
	pdCeiling float64
	scoreMin  int
	scoreMax  int
	bands     []bandCut // sorted by min descending
	k         float64   // PDO / ln 2
}

// LoadConf reads a scorecard configuration YAML file.
func LoadConf(path string) (*Conf, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scorecard conf: %w", err)
	}
	var c Conf
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse scorecard conf: %w", err)
	}
	return &c, nil
}

// New builds a Scorecard from configuration.
func New(conf *Conf) (*Scorecard, error) {
	if conf.Scorecard.PDO <= 0 {
		return nil, fmt.Errorf("scorecard PDO must be > 0")
	}
	if conf.Scorecard.O0 <= 0 {
		return nil, fmt.Errorf("scorecard O0 must be > 0")
	}
	if len(conf.Bands) == 0 {
		return nil, fmt.Errorf("scorecard bands are required")
	}

	sc := &Scorecard{
		s0:        conf.Scorecard.S0,
		o0:        conf.Scorecard.O0,
		pdo:       conf.Scorecard.PDO,
		pdFloor:   0.002,
		pdCeiling: 0.60,
		scoreMin:  0,
		scoreMax:  1000,
	}
	sc.k = sc.pdo / math.Ln2

	if conf.Limits.PDFloor != nil {
		sc.pdFloor = *conf.Limits.PDFloor
	}
	if conf.Limits.PDCeiling != nil {
		sc.pdCeiling = *conf.Limits.PDCeiling
	}
	if conf.Limits.ScoreMin != nil {
		sc.scoreMin = *conf.Limits.ScoreMin
	}
	if conf.Limits.ScoreMax != nil {
		sc.scoreMax = *conf.Limits.ScoreMax
	}

	for name, spec := range conf.Bands {
		sc.bands = append(sc.bands, bandCut{name: name, min: spec.Min})
	}
	sort.Slice(sc.bands, func(i, j int) bool {
		return sc.bands[i].min > sc.bands[j].min
	})

	return sc, nil
}

// ClipPD clamps pd to the configured floor and ceiling.
func (sc *Scorecard) ClipPD(pd float64) float64 {
	return math.Max(sc.pdFloor, math.Min(sc.pdCeiling, pd))
}

// PDToScore maps a default probability to an integer score.
func (sc *Scorecard) PDToScore(pd float64) int {
	pdc := sc.ClipPD(pd)
	odds := (1 - pdc) / pdc
	score := sc.s0 + sc.k*math.Log(odds/sc.o0)
	score = math.Max(float64(sc.scoreMin), math.Min(float64(sc.scoreMax), score))
	return int(math.Round(score))
}

// ScoreToPD is the algebraic inverse of PDToScore up to clamping.
func (sc *Scorecard) ScoreToPD(score int) float64 {
	s := score
	if s < sc.scoreMin {
		s = sc.scoreMin
	}
	if s > sc.scoreMax {
		s = sc.scoreMax
	}
	odds := sc.o0 * math.Exp((float64(s)-sc.s0)/sc.k)
	return sc.ClipPD(1 / (1 + odds))
}

// BandOf returns the band for a score: the first band, walking cut-offs from
// highest to lowest, whose minimum the score meets. Scores below every
// cut-off fall into "E".
func (sc *Scorecard) BandOf(score int) string {
	for _, b := range sc.bands {
		if score >= b.min {
			return b.name
		}
	}
	return "E"
}

// ScoreAndBand maps a PD to its score and band in one call.
func (sc *Scorecard) ScoreAndBand(pd float64) (int, string) {
	s := sc.PDToScore(pd)
	return s, sc.BandOf(s)
}

// ScoreRange returns the configured score bounds.
func (sc *Scorecard) ScoreRange() (int, int) {
	return sc.scoreMin, sc.scoreMax
}
