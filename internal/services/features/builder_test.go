package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"RiskDesk/internal/domain/models"
	"RiskDesk/pkg/logger"
)

type fakeSocial struct {
	benefits     []models.Benefit
	relations    []models.EmploymentRelation
	benefitsErr  error
	relationsErr error
}

func (f *fakeSocial) Benefits(ctx context.Context, subjectID string) ([]models.Benefit, error) {
	return f.benefits, f.benefitsErr
}

func (f *fakeSocial) EmploymentRelations(ctx context.Context, subjectID string) ([]models.EmploymentRelation, error) {
	return f.relations, f.relationsErr
}

type fakeOpenFinance struct {
	identity     models.Identity
	accounts     []models.Account
	accountTxs   map[string][]models.AccountTransaction
	cardAccounts []models.CardAccount
	cardBills    map[string][]models.CardBill
	billTxs      map[string][]models.CardTransaction
	contracts    []models.LoanContract
	installments map[string][]models.LoanInstallment
	payments     map[string][]models.LoanPayment
	identityErr  error
	accountsErr  error
}

func (f *fakeOpenFinance) Identity(ctx context.Context, subjectID string) (models.Identity, error) {
	return f.identity, f.identityErr
}

func (f *fakeOpenFinance) Accounts(ctx context.Context, subjectID string) ([]models.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeOpenFinance) AccountTransactions(ctx context.Context, accountID, from, to string) ([]models.AccountTransaction, error) {
	return f.accountTxs[accountID], nil
}

func (f *fakeOpenFinance) CardAccounts(ctx context.Context, subjectID string) ([]models.CardAccount, error) {
	return f.cardAccounts, nil
}

func (f *fakeOpenFinance) CardBills(ctx context.Context, accountID, fromMonth, toMonth string) ([]models.CardBill, error) {
	return f.cardBills[accountID], nil
}

func (f *fakeOpenFinance) CardBillTransactions(ctx context.Context, accountID, billID string) ([]models.CardTransaction, error) {
	return f.billTxs[billID], nil
}

func (f *fakeOpenFinance) LoanContracts(ctx context.Context, subjectID string) ([]models.LoanContract, error) {
	return f.contracts, nil
}

func (f *fakeOpenFinance) LoanInstallments(ctx context.Context, contractID string) ([]models.LoanInstallment, error) {
	return f.installments[contractID], nil
}

func (f *fakeOpenFinance) LoanPayments(ctx context.Context, contractID string) ([]models.LoanPayment, error) {
	return f.payments[contractID], nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// today is fixed so month windows and DPD arithmetic are deterministic.
var testToday = time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

func healthySocial() *fakeSocial {
	return &fakeSocial{
		benefits: []models.Benefit{
			{DescricaoSituacao: "Ativo", DataInicio: "2023-08-10"},
		},
		relations: []models.EmploymentRelation{
			{DataAdmissao: "2020-01-15"},
		},
	}
}

func healthyOpenFinance() *fakeOpenFinance {
	credit := func(date, amount string) models.AccountTransaction {
		return models.AccountTransaction{BookingDate: date, Amount: dec(amount), CreditDebitType: "CREDIT"}
	}
	debit := func(date, amount string) models.AccountTransaction {
		return models.AccountTransaction{BookingDate: date, Amount: dec(amount), CreditDebitType: "DEBIT"}
	}
	return &fakeOpenFinance{
		identity: models.Identity{BirthDate: "1990-12-25", StartDate: "2015-03-01"},
		accounts: []models.Account{{AccountID: "acc-1"}},
		accountTxs: map[string][]models.AccountTransaction{
			"acc-1": {
				credit("2025-06-05", "1000"),
				credit("2025-07-05", "1000"),
				credit("2025-08-05", "1000"),
				debit("2025-05-12", "200"),
			},
		},
		cardAccounts: []models.CardAccount{{AccountID: "card-1", CreditLimit: dec("2000")}},
		cardBills: map[string][]models.CardBill{
			"card-1": {
				{BillID: "bill-1", DueDate: "2025-08-15", Status: "OPEN", MinimumPayment: dec("50")},
				{Status: "OVERDUE"},
			},
		},
		billTxs: map[string][]models.CardTransaction{
			"bill-1": {{Amount: dec("300")}, {Amount: dec("200")}},
		},
		contracts: []models.LoanContract{{ContractID: "loan-1", Outstanding: dec("6000")}},
		installments: map[string][]models.LoanInstallment{
			"loan-1": {
				{InstalmentID: "i-1", DueDate: "2025-09-10", Amount: "250", Status: "SCHEDULED"},
				{InstalmentID: "i-2", DueDate: "2025-03-01", Amount: "250", Status: "PAID"},
				{InstalmentID: "i-3", DueDate: "2025-08-01", Amount: "250", Status: "SCHEDULED"},
			},
		},
		payments: map[string][]models.LoanPayment{
			"loan-1": {{InstalmentID: "i-2", PaymentDate: "2025-03-15"}},
		},
	}
}

func newTestBuilder(social *fakeSocial, openFi *fakeOpenFinance) *Builder {
	b := NewBuilder(social, openFi, logger.Nop())
	return b.WithClock(func() time.Time { return testToday })
}

func TestBuildFullVector(t *testing.T) {
	b := newTestBuilder(healthySocial(), healthyOpenFinance())
	fv, err := b.Build(context.Background(), "12345678900", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fv.Validate(); err != nil {
		t.Fatalf("vector incomplete: %v", err)
	}

	checks := map[string]float64{
		"beneficio_ativo":         1,
		"tempo_beneficio_meses":   24,
		"emprego_ativo":           1,
		"tempo_emprego_meses":     67,
		"idade":                   34,
		"tempo_rel_banco_meses":   125,
		"renda_media_6m":          500,
		"pct_meses_saldo_neg_6m":  1.0 / 6.0,
		"utilizacao_cartao":       0.25,
		"pct_minimo_pago_3m":      0.10,
		"num_faturas_vencidas_3m": 1,
		"endividamento_total":     1.0,
		"parcelas_renda":          0.5,
		"DPD_max_12m":             28,
	}
	for k, want := range checks {
		if got := fv[k]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", k, want, got)
		}
	}
}

func TestBuildIncomeVariation(t *testing.T) {
	b := newTestBuilder(healthySocial(), healthyOpenFinance())
	fv, err := b.Build(context.Background(), "12345678900", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Monthly incomes [0,0,0,1000,1000,1000]: mean 500, sample std
	// sqrt(6*500^2/5), so cv = std/mean.
	wantStd := math.Sqrt(6 * 500 * 500 / 5.0)
	wantCV := wantStd / 500
	if got := fv["coef_var_renda"]; math.Abs(got-wantCV) > 1e-9 {
		t.Fatalf("coef_var_renda: expected %v, got %v", wantCV, got)
	}
}

func TestBuildAppliesOverrides(t *testing.T) {
	b := newTestBuilder(healthySocial(), healthyOpenFinance())
	override := 0.42
	fv, err := b.Build(context.Background(), "12345678900", map[string]*float64{
		"utilizacao_cartao": &override,
		"renda_media_6m":    nil, // nil overrides are ignored
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv["utilizacao_cartao"] != 0.42 {
		t.Fatalf("override not applied: %v", fv["utilizacao_cartao"])
	}
	if fv["renda_media_6m"] != 500 {
		t.Fatalf("nil override should keep computed value, got %v", fv["renda_media_6m"])
	}
}

func TestBuildMissingBenefitStart(t *testing.T) {
	social := healthySocial()
	social.benefits[0].DataInicio = ""
	b := newTestBuilder(social, healthyOpenFinance())

	_, err := b.Build(context.Background(), "12345678900", nil)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != KindMissingField {
		t.Fatalf("expected missing-field build error, got %v", err)
	}
}

func TestBuildMalformedBirthDate(t *testing.T) {
	openFi := healthyOpenFinance()
	openFi.identity.BirthDate = "25/12/1990"
	b := newTestBuilder(healthySocial(), openFi)

	_, err := b.Build(context.Background(), "12345678900", nil)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != KindMalformedDate {
		t.Fatalf("expected malformed-date build error, got %v", err)
	}
}

func TestBuildEmptyAccounts(t *testing.T) {
	openFi := healthyOpenFinance()
	openFi.accounts = nil
	b := newTestBuilder(healthySocial(), openFi)

	_, err := b.Build(context.Background(), "12345678900", nil)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != KindEmptyUpstream {
		t.Fatalf("expected empty-upstream build error, got %v", err)
	}
}

func TestBuildTransportFailure(t *testing.T) {
	social := healthySocial()
	social.benefitsErr = fmt.Errorf("connection refused")
	b := newTestBuilder(social, healthyOpenFinance())

	_, err := b.Build(context.Background(), "12345678900", nil)
	var be *BuildError
	if !errors.As(err, &be) || be.Kind != KindTransport {
		t.Fatalf("expected transport build error, got %v", err)
	}
}

func TestBuildZeroLimitUtilization(t *testing.T) {
	openFi := healthyOpenFinance()
	openFi.cardAccounts = []models.CardAccount{{AccountID: "card-1", CreditLimit: dec("0")}}
	b := newTestBuilder(healthySocial(), openFi)

	fv, err := b.Build(context.Background(), "12345678900", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv["utilizacao_cartao"] != 0 {
		t.Fatalf("zero total limit should give utilization 0, got %v", fv["utilizacao_cartao"])
	}
}

func TestBuildNoLoansZeroDebtFeatures(t *testing.T) {
	openFi := healthyOpenFinance()
	openFi.contracts = nil
	b := newTestBuilder(healthySocial(), openFi)

	fv, err := b.Build(context.Background(), "12345678900", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, k := range []string{"endividamento_total", "parcelas_renda", "DPD_max_12m"} {
		if fv[k] != 0 {
			t.Fatalf("%s: expected 0 without loan contracts, got %v", k, fv[k])
		}
	}
}
