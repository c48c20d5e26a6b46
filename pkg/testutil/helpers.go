// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// ReferenceInput returns the raw form of the reference valuation used as a
// regression oracle throughout the tests.
func ReferenceInput() map[string]interface{} {
	return map[string]interface{}{
		constants.FieldFCF:               100.0,
		constants.FieldGrowthRate:        0.08,
		constants.FieldDiscountRate:      0.10,
		constants.FieldTerminalGrowth:    0.025,
		constants.FieldYears:             5,
		constants.FieldSharesOutstanding: 1000.0,
		constants.FieldCashEquivalent:    200.0,
		constants.FieldTotalDebt:         300.0,
	}
}

// ReferenceAssumptions is the validated form of ReferenceInput.
func ReferenceAssumptions() dcf.Assumptions {
	return dcf.Assumptions{
		LatestFCF:          100,
		GrowthRate:         0.08,
		DiscountRate:       0.10,
		TerminalGrowth:     0.025,
		ProjectionYears:    5,
		SharesOutstanding:  1000,
		CashAndEquivalents: 200,
		TotalDebt:          300,
	}
}

// Expected outputs for the reference valuation.
const (
	ReferenceEnterpriseValue = 1720.240228399699
	ReferencePerShare        = 1.6202402283996988
)

// InputWith returns ReferenceInput with overrides applied. A nil override
// value deletes the key.
func InputWith(overrides map[string]interface{}) map[string]interface{} {
	input := ReferenceInput()
	for key, value := range overrides {
		if value == nil {
			delete(input, key)
			continue
		}
		input[key] = value
	}
	return input
}

// AssertClose fails the test if got and want differ by more than tolerance.
func AssertClose(t testing.TB, name string, got, want, tolerance float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, want, tolerance) {
		t.Errorf("%s = %v, expected %v (tolerance %v)", name, got, want, tolerance)
	}
}
