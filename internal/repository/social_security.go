// Package repository implements the outbound adapters: HTTP clients for the
// upstream data providers and the decision-event sinks.
package repository

import (
	"context"
	"fmt"
	"time"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	pkghttp "RiskDesk/pkg/http"
)

// SocialSecurityClient queries the social-security records API.
type SocialSecurityClient struct {
	client  *pkghttp.Client
	baseURL string
	token   string
}

// NewSocialSecurityClient builds a client for the given base URL. The bearer
// token is attached to every request.
func NewSocialSecurityClient(baseURL, token string, timeout time.Duration) *SocialSecurityClient {
	return &SocialSecurityClient{
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: baseURL,
		token:   token,
	}
}

func (c *SocialSecurityClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}

type benefitsEnvelope struct {
	Beneficios []models.Benefit `json:"beneficios"`
}

// Benefits returns the subject's benefit records.
func (c *SocialSecurityClient) Benefits(ctx context.Context, subjectID string) ([]models.Benefit, error) {
	var env benefitsEnvelope
	err := c.client.GetJSON(ctx, c.baseURL+"/beneficios",
		map[string]string{"cpf": subjectID}, c.headers(), &env)
	if err != nil {
		return nil, fmt.Errorf("get benefits: %w", err)
	}
	return env.Beneficios, nil
}

type relationsEnvelope struct {
	RelacoesTrabalhistas []models.EmploymentRelation `json:"relacoesTrabalhistas"`
}

// EmploymentRelations returns the subject's formal employment records.
func (c *SocialSecurityClient) EmploymentRelations(ctx context.Context, subjectID string) ([]models.EmploymentRelation, error) {
	var env relationsEnvelope
	err := c.client.GetJSON(ctx, c.baseURL+"/relacoes-trabalhistas",
		map[string]string{"cpf": subjectID}, c.headers(), &env)
	if err != nil {
		return nil, fmt.Errorf("get employment relations: %w", err)
	}
	return env.RelacoesTrabalhistas, nil
}

var _ repository.SocialSecurityProvider = (*SocialSecurityClient)(nil)
