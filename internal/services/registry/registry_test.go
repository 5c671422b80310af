package registry

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"RiskDesk/internal/services/classifier"
	"RiskDesk/pkg/config"
	"RiskDesk/pkg/logger"
)

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
  "features": ["idade"],
  "means": [40],
  "scales": [10],
  "coefficients": [-0.5],
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

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Model.Type = "logistic"
	cfg.Model.ArtifactPath = writeFile(t, dir, "model.json", modelJSON)
	cfg.Risk.ScorecardConf = writeFile(t, dir, "scorecard.yaml", scorecardYAML)
	cfg.Risk.PricingConf = writeFile(t, dir, "pricing.json", pricingJSON)
	return cfg
}

func TestRegistryLoadsOnce(t *testing.T) {
	r := New(testConfig(t), logger.Nop())

	first, err := r.Scorecard()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Scorecard()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached instance on the second call")
	}
}

func TestRegistryConcurrentFirstLoad(t *testing.T) {
	r := New(testConfig(t), logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Classifier(); err != nil {
				t.Errorf("classifier load: %v", err)
			}
			if _, err := r.Pricing(); err != nil {
				t.Errorf("pricing load: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestRegistryMissingModelArtifact(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.ArtifactPath = filepath.Join(t.TempDir(), "absent.json")
	r := New(cfg, logger.Nop())

	_, err := r.Classifier()
	if !errors.Is(err, classifier.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestRegistryRetriesAfterFailedLoad(t *testing.T) {
	cfg := testConfig(t)
	missing := filepath.Join(t.TempDir(), "late.yaml")
	cfg.Risk.ScorecardConf = missing
	r := New(cfg, logger.Nop())

	if _, err := r.Scorecard(); err == nil {
		t.Fatalf("expected error while artifact is absent")
	}

	if err := os.WriteFile(missing, []byte(scorecardYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := r.Scorecard(); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}
