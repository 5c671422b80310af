// Package registry lazily loads the model and curve artifacts shared by all
// requests. Each artifact loads at most once even under concurrent first
// requests; a failed load leaves the slot empty so the next request retries.
package registry

import (
	"sync"

	"RiskDesk/internal/domain/service"
	"RiskDesk/internal/services/classifier"
	"RiskDesk/internal/services/pricing"
	"RiskDesk/internal/services/scorecard"
	"RiskDesk/pkg/config"
	"RiskDesk/pkg/logger"
)

// Registry holds the process-wide scoring artifacts. After a successful load
// each artifact is immutable and read without locking.
type Registry struct {
	cfg *config.Config
	log *logger.Logger

	mu         sync.Mutex
	classifier service.Classifier
	scorecard  *scorecard.Scorecard
	pricing    *pricing.Engine
}

// New builds an empty registry; nothing is loaded until first use.
func New(cfg *config.Config, log *logger.Logger) *Registry {
	return &Registry{cfg: cfg, log: log}
}

// Classifier returns the default-probability model, loading it on first use.
func (r *Registry) Classifier() (service.Classifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.classifier != nil {
		return r.classifier, nil
	}

	var (
		c   service.Classifier
		err error
	)
	switch r.cfg.Model.Type {
	case "http":
		c = classifier.NewHTTPModel(r.cfg.Model.ServiceURL, r.cfg.Model.Timeout)
	default:
		c, err = classifier.LoadLogistic(r.cfg.Model.ArtifactPath)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info("classifier loaded", logger.String("type", r.cfg.Model.Type))
	r.classifier = c
	return c, nil
}

// Scorecard returns the score/band configuration, loading it on first use.
func (r *Registry) Scorecard() (*scorecard.Scorecard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scorecard != nil {
		return r.scorecard, nil
	}

	conf, err := scorecard.LoadConf(r.cfg.Risk.ScorecardConf)
	if err != nil {
		return nil, err
	}
	sc, err := scorecard.New(conf)
	if err != nil {
		return nil, err
	}

	r.log.Info("scorecard loaded", logger.String("path", r.cfg.Risk.ScorecardConf))
	r.scorecard = sc
	return sc, nil
}

// Pricing returns the rate curve and unit-economics engine, loading the
// artifact on first use.
func (r *Registry) Pricing() (*pricing.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pricing != nil {
		return r.pricing, nil
	}

	artifact, err := pricing.LoadArtifact(r.cfg.Risk.PricingConf)
	if err != nil {
		return nil, err
	}
	engine, err := pricing.NewEngine(artifact, pricing.CostConfig{
		LGD:          r.cfg.Risk.Costs.LGD,
		Funding:      r.cfg.Risk.Costs.Funding,
		Opex:         r.cfg.Risk.Costs.Opex,
		MarginTarget: r.cfg.Risk.Costs.MarginTarget,
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("pricing curve loaded", logger.String("path", r.cfg.Risk.PricingConf))
	r.pricing = engine
	return engine, nil
}
