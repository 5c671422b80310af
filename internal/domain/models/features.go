package models

import "fmt"

// FeatureOrder is the canonical ordering of the 15 borrower features expected
// by the default-probability classifier. The names follow the open-consignado
// data dictionary and must not be reordered: trained artifacts index by
// position.
var FeatureOrder = []string{
	"beneficio_ativo", "tempo_beneficio_meses",
	"emprego_ativo", "tempo_emprego_meses",
	"renda_media_6m", "coef_var_renda", "pct_meses_saldo_neg_6m",
	"utilizacao_cartao", "pct_minimo_pago_3m", "num_faturas_vencidas_3m",
	"endividamento_total", "parcelas_renda", "DPD_max_12m",
	"idade", "tempo_rel_banco_meses",
}

// FeatureVector holds the borrower profile keyed by feature name. It is built
// fresh per scoring request and treated as immutable once handed downstream.
type FeatureVector map[string]float64

// Validate checks that every canonical feature key is present.
func (fv FeatureVector) Validate() error {
	var missing []string
	for _, k := range FeatureOrder {
		if _, ok := fv[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing features: %v", missing)
	}
	return nil
}

// Vector returns the features as an ordered slice following FeatureOrder.
func (fv FeatureVector) Vector() ([]float64, error) {
	if err := fv.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(FeatureOrder))
	for i, k := range FeatureOrder {
		out[i] = fv[k]
	}
	return out, nil
}

// ApplyOverrides replaces computed values with caller-supplied ones. Only
// known feature keys with non-nil values are applied.
func (fv FeatureVector) ApplyOverrides(overrides map[string]*float64) {
	for k, v := range overrides {
		if v == nil {
			continue
		}
		if _, ok := fv[k]; ok {
			fv[k] = *v
		}
	}
}

// MonthlyIncome returns the 6-month average income feature.
func (fv FeatureVector) MonthlyIncome() float64 {
	return fv["renda_media_6m"]
}
