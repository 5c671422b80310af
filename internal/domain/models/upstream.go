package models

import "github.com/shopspring/decimal"

// Upstream records are kept close to the provider wire formats: dates stay as
// YYYY-MM-DD strings so the feature builder can report malformed values, and
// money fields decode through decimal.Decimal (providers send both quoted and
// bare numbers).

// Benefit is one social-security benefit record.
type Benefit struct {
	DescricaoSituacao string `json:"descricaoSituacao"`
	DataInicio        string `json:"dataInicio"`
}

// EmploymentRelation is one formal employment record. An empty closure date
// means the relation is still active.
type EmploymentRelation struct {
	DataAdmissao     string `json:"dataAdmissao"`
	DataEncerramento string `json:"dataEncerramento"`
}

// Identity is the open-finance personal identification record.
type Identity struct {
	BirthDate string `json:"birthDate"`
	StartDate string `json:"startDate"`
}

// Account is a checking/deposit account.
type Account struct {
	AccountID string `json:"accountId"`
}

// AccountTransaction is one booked account movement.
type AccountTransaction struct {
	BookingDate     string          `json:"bookingDate"`
	Amount          decimal.Decimal `json:"amount"`
	CreditDebitType string          `json:"creditDebitType"`
}

// CardAccount is a credit-card account with its limit.
type CardAccount struct {
	AccountID   string          `json:"accountId"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
}

// CardBill is one credit-card statement.
type CardBill struct {
	BillID         string          `json:"billId"`
	DueDate        string          `json:"dueDate"`
	Status         string          `json:"status"`
	MinimumPayment decimal.Decimal `json:"minimumPayment"`
}

// CardTransaction is one charge within a bill.
type CardTransaction struct {
	Amount decimal.Decimal `json:"amount"`
}

// LoanContract is an open loan contract with its outstanding balance.
type LoanContract struct {
	ContractID  string          `json:"contractId"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// LoanInstallment is one scheduled loan installment.
type LoanInstallment struct {
	InstalmentID string `json:"instalmentId"`
	DueDate      string `json:"dueDate"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
}

// LoanPayment is a settlement record for one installment.
type LoanPayment struct {
	InstalmentID string `json:"instalmentId"`
	PaymentDate  string `json:"paymentDate"`
}
