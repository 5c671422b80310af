// Package features assembles the 15-feature borrower profile from the
// social-security and open-finance providers. Assembly is all-or-nothing:
// a missing field, malformed date, empty mandatory result or transport
// failure aborts the build with a classified BuildError.
package features

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	"RiskDesk/pkg/logger"
	"RiskDesk/pkg/util"
)

const (
	incomeWindowMonths   = 6
	cardWindowMonths     = 3
	installmentHorizonD  = 35
	statusBenefitActive  = "ATIVO"
	statusBillOpen       = "OPEN"
	statusBillOverdue    = "OVERDUE"
	statusInstalmentPaid = "PAID"
)

// Builder fetches upstream records and derives the feature vector.
type Builder struct {
	social repository.SocialSecurityProvider
	openFi repository.OpenFinanceProvider
	log    *logger.Logger
	now    func() time.Time
}

// NewBuilder wires a feature builder over the two upstream providers.
func NewBuilder(social repository.SocialSecurityProvider, openFi repository.OpenFinanceProvider, log *logger.Logger) *Builder {
	return &Builder{
		social: social,
		openFi: openFi,
		log:    log,
		now:    time.Now,
	}
}

// WithClock fixes the builder's notion of "today". Used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build assembles the full feature vector for a subject, applying non-nil
// overrides last. Every one of the 15 canonical keys is guaranteed present
// on success.
func (b *Builder) Build(ctx context.Context, subjectID string, overrides map[string]*float64) (models.FeatureVector, error) {
	today := b.now().UTC().Truncate(24 * time.Hour)

	fv := models.FeatureVector{}

	if err := b.benefitFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}
	if err := b.employmentFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}
	if err := b.identityFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}
	if err := b.incomeFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}
	if err := b.cardFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}
	if err := b.loanFeatures(ctx, subjectID, today, fv); err != nil {
		return nil, err
	}

	fv.ApplyOverrides(overrides)

	if err := fv.Validate(); err != nil {
		return nil, &BuildError{Kind: KindMissingField, Msg: "incomplete feature vector", Err: err}
	}

	b.log.Debug("feature vector assembled",
		logger.String("subject", subjectID),
		logger.Int("features", len(fv)),
	)
	return fv, nil
}

func (b *Builder) benefitFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	benefits, err := b.social.Benefits(ctx, subjectID)
	if err != nil {
		return transport("social-security/benefits", err)
	}
	if len(benefits) == 0 {
		return emptyUpstream("social-security/benefits")
	}
	ben := benefits[0]

	if ben.DescricaoSituacao == "" || ben.DataInicio == "" {
		return missingField("social-security/benefits: descricaoSituacao or dataInicio")
	}
	start, err := util.ParseDate(ben.DataInicio)
	if err != nil {
		return malformedDate("social-security/benefits: dataInicio", err)
	}

	fv["beneficio_ativo"] = boolFeature(strings.EqualFold(ben.DescricaoSituacao, statusBenefitActive))
	fv["tempo_beneficio_meses"] = float64(util.MonthsBetween(start, today))
	return nil
}

func (b *Builder) employmentFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	relations, err := b.social.EmploymentRelations(ctx, subjectID)
	if err != nil {
		return transport("social-security/employment-relations", err)
	}
	if len(relations) == 0 {
		return emptyUpstream("social-security/employment-relations")
	}
	rel := relations[0]

	if rel.DataAdmissao == "" {
		return missingField("social-security/employment-relations: dataAdmissao")
	}
	admission, err := util.ParseDate(rel.DataAdmissao)
	if err != nil {
		return malformedDate("social-security/employment-relations: dataAdmissao", err)
	}

	fv["emprego_ativo"] = boolFeature(rel.DataEncerramento == "")
	fv["tempo_emprego_meses"] = float64(util.MonthsBetween(admission, today))
	return nil
}

func (b *Builder) identityFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	ident, err := b.openFi.Identity(ctx, subjectID)
	if err != nil {
		return transport("open-finance/identity", err)
	}
	if ident.BirthDate == "" || ident.StartDate == "" {
		return missingField("open-finance/identity: birthDate or startDate")
	}

	birth, err := util.ParseDate(ident.BirthDate)
	if err != nil {
		return malformedDate("open-finance/identity: birthDate", err)
	}
	start, err := util.ParseDate(ident.StartDate)
	if err != nil {
		return malformedDate("open-finance/identity: startDate", err)
	}

	age := util.AgeYears(birth, today)
	if age < 18 {
		age = 18
	}
	fv["idade"] = float64(age)
	fv["tempo_rel_banco_meses"] = float64(util.MonthsBetween(start, today))
	return nil
}

func (b *Builder) incomeFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	accounts, err := b.openFi.Accounts(ctx, subjectID)
	if err != nil {
		return transport("open-finance/accounts", err)
	}
	if len(accounts) == 0 {
		return emptyUpstream("open-finance/accounts")
	}

	months := util.LastNMonths(incomeWindowMonths, today)
	incomePerMonth := make(map[string]decimal.Decimal, len(months))
	netPerMonth := make(map[string]decimal.Decimal, len(months))
	for _, m := range months {
		incomePerMonth[m] = decimal.Zero
		netPerMonth[m] = decimal.Zero
	}

	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := firstOfMonth.AddDate(0, 0, -180).Format(util.DateLayout)
	to := today.Format(util.DateLayout)

	for _, acc := range accounts {
		if acc.AccountID == "" {
			continue
		}
		txs, err := b.openFi.AccountTransactions(ctx, acc.AccountID, from, to)
		if err != nil {
			return transport("open-finance/account-transactions", err)
		}
		for _, tx := range txs {
			if len(tx.BookingDate) < 7 {
				continue
			}
			ym := tx.BookingDate[:7]
			if _, ok := incomePerMonth[ym]; !ok {
				continue
			}
			switch strings.ToUpper(tx.CreditDebitType) {
			case "CREDIT":
				incomePerMonth[ym] = incomePerMonth[ym].Add(tx.Amount)
				netPerMonth[ym] = netPerMonth[ym].Add(tx.Amount)
			case "DEBIT":
				netPerMonth[ym] = netPerMonth[ym].Sub(tx.Amount)
			}
		}
	}

	totalIncome := decimal.Zero
	for _, m := range months {
		totalIncome = totalIncome.Add(incomePerMonth[m])
	}
	mean := totalIncome.Div(decimal.NewFromInt(incomeWindowMonths))
	fv["renda_media_6m"] = mean.InexactFloat64()

	// Coefficient of variation over the 6 monthly income values, sample
	// standard deviation (n-1), defined as 0 when no income was observed.
	if totalIncome.IsPositive() {
		meanF := mean.InexactFloat64()
		sumSq := 0.0
		for _, m := range months {
			d := incomePerMonth[m].InexactFloat64() - meanF
			sumSq += d * d
		}
		std := math.Sqrt(sumSq / float64(incomeWindowMonths-1))
		fv["coef_var_renda"] = std / meanF
	} else {
		fv["coef_var_renda"] = 0
	}

	negMonths := 0
	for _, m := range months {
		if netPerMonth[m].IsNegative() {
			negMonths++
		}
	}
	fv["pct_meses_saldo_neg_6m"] = float64(negMonths) / float64(incomeWindowMonths)
	return nil
}

func (b *Builder) cardFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	cardAccounts, err := b.openFi.CardAccounts(ctx, subjectID)
	if err != nil {
		return transport("open-finance/card-accounts", err)
	}
	if len(cardAccounts) == 0 {
		return emptyUpstream("open-finance/card-accounts")
	}

	months3 := util.LastNMonths(cardWindowMonths, today)
	fromMonth, toMonth := months3[0], months3[len(months3)-1]

	totalLimit := decimal.Zero
	openBillSpend := decimal.Zero
	var minPayRatios []decimal.Decimal
	overdueCount := 0

	for _, cca := range cardAccounts {
		totalLimit = totalLimit.Add(cca.CreditLimit)

		bills, err := b.openFi.CardBills(ctx, cca.AccountID, fromMonth, toMonth)
		if err != nil {
			return transport("open-finance/card-bills", err)
		}
		for _, bill := range bills {
			status := strings.ToUpper(bill.Status)
			if status == statusBillOverdue {
				overdueCount++
			}
			if bill.BillID == "" || bill.DueDate == "" {
				continue
			}

			txs, err := b.openFi.CardBillTransactions(ctx, cca.AccountID, bill.BillID)
			if err != nil {
				return transport("open-finance/card-bill-transactions", err)
			}
			billTotal := decimal.Zero
			for _, t := range txs {
				billTotal = billTotal.Add(t.Amount)
			}

			if status == statusBillOpen {
				openBillSpend = openBillSpend.Add(billTotal)
			}
			if billTotal.IsPositive() {
				minPayRatios = append(minPayRatios, bill.MinimumPayment.Div(billTotal))
			}
		}
	}

	if totalLimit.IsPositive() {
		fv["utilizacao_cartao"] = openBillSpend.Div(totalLimit).InexactFloat64()
	} else {
		fv["utilizacao_cartao"] = 0
	}

	if len(minPayRatios) > 0 {
		sum := decimal.Zero
		for _, r := range minPayRatios {
			sum = sum.Add(r)
		}
		fv["pct_minimo_pago_3m"] = sum.Div(decimal.NewFromInt(int64(len(minPayRatios)))).InexactFloat64()
	} else {
		fv["pct_minimo_pago_3m"] = 0
	}

	fv["num_faturas_vencidas_3m"] = float64(overdueCount)
	return nil
}

func (b *Builder) loanFeatures(ctx context.Context, subjectID string, today time.Time, fv models.FeatureVector) error {
	contracts, err := b.openFi.LoanContracts(ctx, subjectID)
	if err != nil {
		return transport("open-finance/loan-contracts", err)
	}

	totalOutstanding := decimal.Zero
	for _, c := range contracts {
		totalOutstanding = totalOutstanding.Add(c.Outstanding)
	}

	monthlyIncome := decimal.NewFromFloat(fv["renda_media_6m"])
	annualIncome := monthlyIncome.Mul(decimal.NewFromInt(12))
	if annualIncome.IsPositive() {
		fv["endividamento_total"] = totalOutstanding.Div(annualIncome).InexactFloat64()
	} else {
		fv["endividamento_total"] = 0
	}

	horizon := today.AddDate(0, 0, installmentHorizonD)
	windowStart := today.AddDate(-1, 0, 0)
	upcomingInstallments := decimal.Zero
	dpdMax := 0

	for _, c := range contracts {
		if c.ContractID == "" {
			continue
		}
		installments, err := b.openFi.LoanInstallments(ctx, c.ContractID)
		if err != nil {
			return transport("open-finance/loan-installments", err)
		}
		payments, err := b.openFi.LoanPayments(ctx, c.ContractID)
		if err != nil {
			return transport("open-finance/loan-payments", err)
		}

		paidOn := make(map[string]time.Time, len(payments))
		for _, p := range payments {
			if p.InstalmentID == "" || p.PaymentDate == "" {
				continue
			}
			d, err := util.ParseDate(p.PaymentDate)
			if err != nil {
				return malformedDate("open-finance/loan-payments: paymentDate", err)
			}
			paidOn[p.InstalmentID] = d
		}

		for _, inst := range installments {
			if inst.DueDate == "" || inst.Amount == "" {
				continue
			}
			due, err := util.ParseDate(inst.DueDate)
			if err != nil {
				return malformedDate("open-finance/loan-installments: dueDate", err)
			}
			amt, err := decimal.NewFromString(inst.Amount)
			if err != nil {
				amt = decimal.Zero
			}

			if !due.Before(today) && !due.After(horizon) {
				upcomingInstallments = upcomingInstallments.Add(amt)
			}

			if !due.Before(windowStart) {
				if strings.ToUpper(inst.Status) == statusInstalmentPaid {
					if paid, ok := paidOn[inst.InstalmentID]; ok {
						if dpd := util.DaysBetween(due, paid); dpd > dpdMax {
							dpdMax = dpd
						}
						continue
					}
				}
				if due.Before(today) {
					if dpd := util.DaysBetween(due, today); dpd > dpdMax {
						dpdMax = dpd
					}
				}
			}
		}
	}

	if monthlyIncome.IsPositive() {
		fv["parcelas_renda"] = upcomingInstallments.Div(monthlyIncome).InexactFloat64()
	} else {
		fv["parcelas_renda"] = 0
	}
	fv["DPD_max_12m"] = float64(dpdMax)
	return nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
