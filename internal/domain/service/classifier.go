package service

import (
	"context"

	"RiskDesk/internal/domain/models"
)

// Classifier estimates the 12-month default probability for a borrower
// profile. The model behind it is opaque: file-backed, remote, or in-memory.
type Classifier interface {
	Predict(ctx context.Context, features models.FeatureVector) (float64, error)
}
