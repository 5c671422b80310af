package classifier

import (
	"context"
	"fmt"
	"time"

	"RiskDesk/internal/domain/models"
	domsvc "RiskDesk/internal/domain/service"
	pkghttp "RiskDesk/pkg/http"
)

// HTTPModel calls an external model service for default probabilities.
type HTTPModel struct {
	client  *pkghttp.Client
	baseURL string
}

// NewHTTPModel builds a remote-model client.
func NewHTTPModel(baseURL string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: baseURL,
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	PD float64 `json:"pd"`
}

// Predict posts the feature vector to the model service's predict endpoint.
func (m *HTTPModel) Predict(ctx context.Context, fv models.FeatureVector) (float64, error) {
	var resp predictResponse
	err := m.client.PostJSON(ctx, m.baseURL+"/predict", predictRequest{Features: fv}, nil, &resp)
	if err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	if resp.PD < 0 || resp.PD > 1 {
		return 0, fmt.Errorf("model returned pd out of range: %v", resp.PD)
	}
	return resp.PD, nil
}

var _ domsvc.Classifier = (*HTTPModel)(nil)
