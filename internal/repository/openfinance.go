package repository

import (
	"context"
	"fmt"
	"time"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	pkghttp "RiskDesk/pkg/http"
)

// OpenFinanceClient queries the open-finance aggregation API. Endpoint paths
// follow the Brazilian Open Finance phase-2 resource layout.
type OpenFinanceClient struct {
	client  *pkghttp.Client
	baseURL string
	token   string
}

// NewOpenFinanceClient builds a client for the given base URL.
func NewOpenFinanceClient(baseURL, token string, timeout time.Duration) *OpenFinanceClient {
	return &OpenFinanceClient{
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: baseURL,
		token:   token,
	}
}

func (c *OpenFinanceClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}

// dataEnvelope is the standard open-finance list wrapper.
type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

func getList[T any](ctx context.Context, c *OpenFinanceClient, path, what string, query map[string]string) ([]T, error) {
	var env dataEnvelope[T]
	err := c.client.GetJSON(ctx, c.baseURL+path, query, c.headers(), &env)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return env.Data, nil
}

// Identity returns the subject's personal identification record.
func (c *OpenFinanceClient) Identity(ctx context.Context, subjectID string) (models.Identity, error) {
	var ident models.Identity
	err := c.client.GetJSON(ctx, c.baseURL+"/customers/v2/personal/identifications",
		map[string]string{"cpf": subjectID}, c.headers(), &ident)
	if err != nil {
		return models.Identity{}, fmt.Errorf("get identity: %w", err)
	}
	return ident, nil
}

// Accounts lists the subject's checking accounts.
func (c *OpenFinanceClient) Accounts(ctx context.Context, subjectID string) ([]models.Account, error) {
	return getList[models.Account](ctx, c, "/accounts/v2/accounts", "accounts",
		map[string]string{"cpf": subjectID})
}

// AccountTransactions lists booked movements for an account in [from, to].
func (c *OpenFinanceClient) AccountTransactions(ctx context.Context, accountID, from, to string) ([]models.AccountTransaction, error) {
	path := fmt.Sprintf("/accounts/v2/%s/transactions", accountID)
	return getList[models.AccountTransaction](ctx, c, path, "account transactions",
		map[string]string{"from": from, "to": to})
}

// CardAccounts lists the subject's credit-card accounts.
func (c *OpenFinanceClient) CardAccounts(ctx context.Context, subjectID string) ([]models.CardAccount, error) {
	return getList[models.CardAccount](ctx, c, "/credit-cards-accounts/v2/accounts", "card accounts",
		map[string]string{"cpf": subjectID})
}

// CardBills lists a card's statements for the [fromMonth, toMonth] window.
func (c *OpenFinanceClient) CardBills(ctx context.Context, accountID, fromMonth, toMonth string) ([]models.CardBill, error) {
	path := fmt.Sprintf("/credit-cards-accounts/v2/%s/bills", accountID)
	return getList[models.CardBill](ctx, c, path, "card bills",
		map[string]string{"from": fromMonth, "to": toMonth})
}

// CardBillTransactions lists the charges of one statement.
func (c *OpenFinanceClient) CardBillTransactions(ctx context.Context, accountID, billID string) ([]models.CardTransaction, error) {
	path := fmt.Sprintf("/credit-cards-accounts/v2/%s/transactions", accountID)
	return getList[models.CardTransaction](ctx, c, path, "card bill transactions",
		map[string]string{"billId": billID})
}

// LoanContracts lists the subject's open loan contracts.
func (c *OpenFinanceClient) LoanContracts(ctx context.Context, subjectID string) ([]models.LoanContract, error) {
	return getList[models.LoanContract](ctx, c, "/loans/v2/contracts", "loan contracts",
		map[string]string{"cpf": subjectID})
}

// LoanInstallments lists the scheduled installments of a contract.
func (c *OpenFinanceClient) LoanInstallments(ctx context.Context, contractID string) ([]models.LoanInstallment, error) {
	path := fmt.Sprintf("/loans/v2/contracts/%s/installments", contractID)
	return getList[models.LoanInstallment](ctx, c, path, "loan installments", nil)
}

// LoanPayments lists the settlement records of a contract.
func (c *OpenFinanceClient) LoanPayments(ctx context.Context, contractID string) ([]models.LoanPayment, error) {
	path := fmt.Sprintf("/loans/v2/contracts/%s/payments", contractID)
	return getList[models.LoanPayment](ctx, c, path, "loan payments", nil)
}

var _ repository.OpenFinanceProvider = (*OpenFinanceClient)(nil)
