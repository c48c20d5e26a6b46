// Package dcf implements a discounted cash flow valuation engine.
//
// The package exposes two operations. Validate turns a raw mapping of field
// name to value into an Assumptions record or a structured error. Compute
// projects free cash flow over the explicit period, discounts it, adds a
// Gordon-growth terminal value and bridges enterprise value to a per-share
// intrinsic value. Both are pure functions: no logging, no I/O and no shared
// state, so they are safe to call from any number of goroutines.
package dcf

// Assumptions is a validated set of valuation inputs. Rates are fractions,
// so 0.08 means 8%.
type Assumptions struct {
	LatestFCF          float64 `json:"fcf" yaml:"fcf"`
	GrowthRate         float64 `json:"growth_rate" yaml:"growth_rate"`
	DiscountRate       float64 `json:"discount_rate" yaml:"discount_rate"`
	TerminalGrowth     float64 `json:"terminal_growth" yaml:"terminal_growth"`
	ProjectionYears    int     `json:"years" yaml:"years"`
	SharesOutstanding  float64 `json:"shares_outstanding" yaml:"shares_outstanding"`
	CashAndEquivalents float64 `json:"cash_equivalent" yaml:"cash_equivalent"`
	TotalDebt          float64 `json:"total_debt" yaml:"total_debt"`
}

// ProjectedCashFlow is one year of the explicit projection period.
type ProjectedCashFlow struct {
	Year           int     `json:"year"`
	ProjectedFCF   float64 `json:"projected_fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// Result holds the outputs of a single valuation. Values are unrounded.
type Result struct {
	EnterpriseValue        float64             `json:"enterprise_value"`
	TerminalValue          float64             `json:"terminal_value"`
	EquityValue            float64             `json:"equity_value"`
	IntrinsicValuePerShare float64             `json:"intrinsic_value_per_share"`
	SumPresentValue        float64             `json:"sum_pv_years"`
	PresentTerminalValue   float64             `json:"pv_terminal_value"`
	LastCashFlow           float64             `json:"last_cash_flow"`
	Projections            []ProjectedCashFlow `json:"projections"`
}
