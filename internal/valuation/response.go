package valuation

import (
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// Response is the wire shape of a valuation. Figures are rounded to cents
// for display; the underlying Report keeps full precision.
type Response struct {
	EnterpriseValue        float64   `json:"enterprise_value"`
	IntrinsicValuePerShare float64   `json:"intrinsic_value_per_share"`
	EquityValue            float64   `json:"equity_value"`
	TerminalValue          float64   `json:"terminal_value"`
	ProjectedCashFlows     []float64 `json:"projected_cash_flows"`
	DiscountedCashFlows    []float64 `json:"discounted_cash_flows"`
	LastCashFlow           float64   `json:"last_cash_flow"`
	SumPVYears             float64   `json:"sum_pv_years"`
	PVTerminalValue        float64   `json:"pv_terminal_value"`
	Duration               string    `json:"duration,omitempty"`
}

// NewResponse builds the wire response for report.
func NewResponse(report *Report) Response {
	r := report.Result

	projected := make([]float64, len(r.Projections))
	discounted := make([]float64, len(r.Projections))
	for i, p := range r.Projections {
		projected[i] = p.ProjectedFCF
		discounted[i] = p.PresentValue
	}

	resp := Response{
		EnterpriseValue:        mathutil.Round(r.EnterpriseValue),
		IntrinsicValuePerShare: mathutil.Round(r.IntrinsicValuePerShare),
		EquityValue:            mathutil.Round(r.EquityValue),
		TerminalValue:          mathutil.Round(r.TerminalValue),
		ProjectedCashFlows:     mathutil.RoundAll(projected),
		DiscountedCashFlows:    mathutil.RoundAll(discounted),
		LastCashFlow:           mathutil.Round(r.LastCashFlow),
		SumPVYears:             mathutil.Round(r.SumPresentValue),
		PVTerminalValue:        mathutil.Round(r.PresentTerminalValue),
	}
	if report.Duration > 0 {
		resp.Duration = report.Duration.String()
	}
	return resp
}
