package dcf

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

// ErrNonFiniteResult is returned when valid but extreme inputs overflow
// float64 somewhere in the calculation.
var ErrNonFiniteResult = errors.New("valuation result is not finite")

// Compute values a business from validated assumptions.
//
// For each year t in 1..N the latest free cash flow is grown by
// (1+growth)^t and discounted by 1/(1+discount)^t. The terminal value is the
// year-N cash flow grown one more period and capitalized at
// (discount - terminal growth); it is discounted with the year-N factor.
// Enterprise value is bridged to equity by adding cash and subtracting debt.
//
// Compute returns an *InvariantViolation if a is a record Validate would have
// rejected.
func Compute(a Assumptions) (Result, error) {
	if err := checkInvariants(a); err != nil {
		return Result{}, err
	}

	n := a.ProjectionYears
	projections := make([]ProjectedCashFlow, 0, n)
	sumPV := 0.0
	for t := 1; t <= n; t++ {
		projected := a.LatestFCF * math.Pow(1+a.GrowthRate, float64(t))
		factor := 1 / math.Pow(1+a.DiscountRate, float64(t))
		pv := projected * factor
		sumPV += pv
		projections = append(projections, ProjectedCashFlow{
			Year:           t,
			ProjectedFCF:   projected,
			DiscountFactor: factor,
			PresentValue:   pv,
		})
	}

	last := projections[n-1]
	terminal := last.ProjectedFCF * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	pvTerminal := terminal * last.DiscountFactor

	enterprise := sumPV + pvTerminal
	equity := enterprise + a.CashAndEquivalents - a.TotalDebt

	result := Result{
		EnterpriseValue:        enterprise,
		TerminalValue:          terminal,
		EquityValue:            equity,
		IntrinsicValuePerShare: equity / a.SharesOutstanding,
		SumPresentValue:        sumPV,
		PresentTerminalValue:   pvTerminal,
		LastCashFlow:           last.ProjectedFCF,
		Projections:            projections,
	}

	outputs := []struct {
		name  string
		value float64
	}{
		{"terminal_value", result.TerminalValue},
		{"enterprise_value", result.EnterpriseValue},
		{"intrinsic_value_per_share", result.IntrinsicValuePerShare},
	}
	for _, out := range outputs {
		if !isFinite(out.value) {
			return Result{}, fmt.Errorf("%s: %w", out.name, ErrNonFiniteResult)
		}
	}

	return result, nil
}

func checkInvariants(a Assumptions) error {
	fields := []struct {
		name  string
		value float64
	}{
		{constants.FieldFCF, a.LatestFCF},
		{constants.FieldGrowthRate, a.GrowthRate},
		{constants.FieldDiscountRate, a.DiscountRate},
		{constants.FieldTerminalGrowth, a.TerminalGrowth},
		{constants.FieldSharesOutstanding, a.SharesOutstanding},
		{constants.FieldCashEquivalent, a.CashAndEquivalents},
		{constants.FieldTotalDebt, a.TotalDebt},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return &InvariantViolation{Field: f.name, Detail: fmt.Sprintf("%v is not finite", f.value)}
		}
	}

	switch {
	case a.DiscountRate <= a.TerminalGrowth:
		return &InvariantViolation{
			Field:  constants.FieldDiscountRate,
			Detail: fmt.Sprintf("discount rate %v is not greater than terminal growth %v", a.DiscountRate, a.TerminalGrowth),
		}
	case a.DiscountRate <= -1:
		return &InvariantViolation{
			Field:  constants.FieldDiscountRate,
			Detail: fmt.Sprintf("discount rate %v leaves the discount factor undefined", a.DiscountRate),
		}
	case a.ProjectionYears < 1:
		return &InvariantViolation{
			Field:  constants.FieldYears,
			Detail: fmt.Sprintf("projection years %d is below 1", a.ProjectionYears),
		}
	case a.ProjectionYears > constants.MaxProjectionYears:
		return &InvariantViolation{
			Field:  constants.FieldYears,
			Detail: fmt.Sprintf("projection years %d exceeds %d", a.ProjectionYears, constants.MaxProjectionYears),
		}
	case a.SharesOutstanding <= 0:
		return &InvariantViolation{
			Field:  constants.FieldSharesOutstanding,
			Detail: fmt.Sprintf("shares outstanding %v is not positive", a.SharesOutstanding),
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
