package repository

import (
	"context"

	"RiskDesk/internal/domain/models"
)

// Upstream data providers are read-only query interfaces over external
// record systems. Implementations must return an error for transport
// failures and non-2xx responses; payload-level validation is the feature
// builder's job.

// SocialSecurityProvider serves benefit and employment records.
type SocialSecurityProvider interface {
	Benefits(ctx context.Context, subjectID string) ([]models.Benefit, error)
	EmploymentRelations(ctx context.Context, subjectID string) ([]models.EmploymentRelation, error)
}

// OpenFinanceProvider serves account, card and loan histories.
type OpenFinanceProvider interface {
	Identity(ctx context.Context, subjectID string) (models.Identity, error)
	Accounts(ctx context.Context, subjectID string) ([]models.Account, error)
	AccountTransactions(ctx context.Context, accountID, from, to string) ([]models.AccountTransaction, error)
	CardAccounts(ctx context.Context, subjectID string) ([]models.CardAccount, error)
	CardBills(ctx context.Context, accountID, fromMonth, toMonth string) ([]models.CardBill, error)
	CardBillTransactions(ctx context.Context, accountID, billID string) ([]models.CardTransaction, error)
	LoanContracts(ctx context.Context, subjectID string) ([]models.LoanContract, error)
	LoanInstallments(ctx context.Context, contractID string) ([]models.LoanInstallment, error)
	LoanPayments(ctx context.Context, contractID string) ([]models.LoanPayment, error)
}
