package valuation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewResponseRoundsForDisplay(t *testing.T) {
	result, err := dcf.Compute(testutil.ReferenceAssumptions())
	require.NoError(t, err)

	resp := NewResponse(&Report{
		Assumptions: testutil.ReferenceAssumptions(),
		Result:      result,
		Duration:    1500 * time.Microsecond,
	})

	require.Equal(t, Response{
		EnterpriseValue:        1720.24,
		IntrinsicValuePerShare: 1.62,
		EquityValue:            1620.24,
		TerminalValue:          2008.08,
		ProjectedCashFlows:     []float64{108, 116.64, 125.97, 136.05, 146.93},
		DiscountedCashFlows:    []float64{98.18, 96.4, 94.64, 92.92, 91.23},
		LastCashFlow:           146.93,
		SumPVYears:             473.38,
		PVTerminalValue:        1246.86,
		Duration:               "1.5ms",
	}, resp)
}

func TestResponseWireKeys(t *testing.T) {
	result, err := dcf.Compute(testutil.ReferenceAssumptions())
	require.NoError(t, err)

	data, err := json.Marshal(NewResponse(&Report{Result: result}))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"enterprise_value", "intrinsic_value_per_share", "equity_value", "terminal_value",
		"projected_cash_flows", "discounted_cash_flows", "last_cash_flow", "sum_pv_years", "pv_terminal_value",
	} {
		require.Contains(t, decoded, key)
	}
	require.NotContains(t, decoded, "duration")
}
