// Package classifier provides the default-probability models behind the
// scoring pipeline: a file-backed logistic artifact for self-contained
// deployments and an HTTP client for an external model service.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"RiskDesk/internal/domain/models"
	domsvc "RiskDesk/internal/domain/service"
)

// ErrArtifactMissing reports that the model artifact could not be loaded.
// This is fatal: the service cannot score without a model.
var ErrArtifactMissing = errors.New("model artifact missing")

// LogisticArtifact is a fitted logistic regression with standardization
// parameters, exported by the training job as JSON.
type LogisticArtifact struct {
	Features     []string  `json:"features"`
	Means        []float64 `json:"means"`
	Scales       []float64 `json:"scales"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Logistic scores feature vectors against a loaded artifact. Immutable after
// construction and safe for concurrent use.
type Logistic struct {
	artifact *LogisticArtifact
}

// LoadLogistic reads a logistic artifact from disk.
func LoadLogistic(path string) (*Logistic, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	var a LogisticArtifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	return NewLogistic(&a)
}

// NewLogistic validates an artifact and wraps it as a classifier.
func NewLogistic(a *LogisticArtifact) (*Logistic, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: artifact declares no features", ErrArtifactMissing)
	}
	if len(a.Means) != len(a.Features) || len(a.Scales) != len(a.Features) || len(a.Coefficients) != len(a.Features) {
		return nil, fmt.Errorf("%w: artifact arrays disagree on length", ErrArtifactMissing)
	}
	for i, s := range a.Scales {
		if s == 0 {
			return nil, fmt.Errorf("%w: zero scale for feature %s", ErrArtifactMissing, a.Features[i])
		}
	}
	return &Logistic{artifact: a}, nil
}

// Predict returns the default probability for a feature vector.
func (l *Logistic) Predict(_ context.Context, fv models.FeatureVector) (float64, error) {
	z := l.artifact.Intercept
	for i, name := range l.artifact.Features {
		x, ok := fv[name]
		if !ok {
			return 0, fmt.Errorf("feature %s missing from vector", name)
		}
		z += l.artifact.Coefficients[i] * (x - l.artifact.Means[i]) / l.artifact.Scales[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

var _ domsvc.Classifier = (*Logistic)(nil)
