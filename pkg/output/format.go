// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/format"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders a valuation in the named format.
func Write(w io.Writer, outputFormat string, a dcf.Assumptions, r dcf.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, a, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, a, r)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, a dcf.Assumptions, r dcf.Result) error {
	p := message.NewPrinter(language.English)

	lines := []struct {
		label string
		value string
	}{
		{"Latest free cash flow", format.Currency(a.LatestFCF)},
		{"Growth rate", format.Percent(a.GrowthRate)},
		{"Discount rate", format.Percent(a.DiscountRate)},
		{"Terminal growth rate", format.Percent(a.TerminalGrowth)},
		{"Projection years", strconv.Itoa(a.ProjectionYears)},
		{"Shares outstanding", p.Sprintf("%.2f", a.SharesOutstanding)},
		{"Cash and equivalents", format.Currency(a.CashAndEquivalents)},
		{"Total debt", format.Currency(a.TotalDebt)},
	}

	if _, err := fmt.Fprintf(w, "--- Assumptions ---\n"); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%-22s | %s\n", line.label, line.value); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n--- Projected cash flows ---\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Year | Projected FCF | Discount factor | Present value\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "____ | _____________ | _______________ | _____________\n"); err != nil {
		return err
	}
	for _, cf := range r.Projections {
		if _, err := p.Fprintf(w, "%4d | $%.2f | %.4f | $%.2f\n", cf.Year, cf.ProjectedFCF, cf.DiscountFactor, cf.PresentValue); err != nil {
			return err
		}
	}

	summary := []struct {
		label string
		value string
	}{
		{"Sum of present values", format.Currency(r.SumPresentValue)},
		{"Terminal value", format.Currency(r.TerminalValue)},
		{"PV of terminal value", format.Currency(r.PresentTerminalValue)},
		{"Enterprise value", format.Currency(r.EnterpriseValue)},
		{"Terminal value weight", fmt.Sprintf("%.2f%%", mathutil.CalculatePercentage(r.PresentTerminalValue, r.EnterpriseValue))},
		{"Equity value", format.Currency(r.EquityValue)},
		{"Intrinsic value/share", format.Currency(r.IntrinsicValuePerShare)},
	}

	if _, err := fmt.Fprintf(w, "\n--- Valuation ---\n"); err != nil {
		return err
	}
	for _, line := range summary {
		if _, err := fmt.Fprintf(w, "%-22s | %s\n", line.label, line.value); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format: one row per projected
// year, a terminal row, then summary rows keyed by name.
func CsvFormat(w io.Writer, r dcf.Result) error {
	writer := csv.NewWriter(w)
	records := [][]string{{"item", "projected_fcf", "discount_factor", "present_value"}}

	for _, cf := range r.Projections {
		records = append(records, []string{
			strconv.Itoa(cf.Year),
			formatFloat(cf.ProjectedFCF),
			formatFactor(cf.DiscountFactor),
			formatFloat(cf.PresentValue),
		})
	}

	terminalFactor := ""
	if n := len(r.Projections); n > 0 {
		terminalFactor = formatFactor(r.Projections[n-1].DiscountFactor)
	}
	records = append(records,
		[]string{"terminal", formatFloat(r.TerminalValue), terminalFactor, formatFloat(r.PresentTerminalValue)},
		[]string{"sum_pv_years", "", "", formatFloat(r.SumPresentValue)},
		[]string{"enterprise_value", "", "", formatFloat(r.EnterpriseValue)},
		[]string{"equity_value", "", "", formatFloat(r.EquityValue)},
		[]string{"intrinsic_value_per_share", "", "", formatFloat(r.IntrinsicValuePerShare)},
	)

	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// CsvString returns CsvFormat output as a string.
func CsvString(r dcf.Result) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, r); err != nil {
		return ""
	}
	return buf.String()
}

type jsonDocument struct {
	Assumptions dcf.Assumptions `json:"assumptions"`
	Result      dcf.Result      `json:"result"`
}

// JSONFormat outputs the assumptions and unrounded result as indented JSON.
func JSONFormat(w io.Writer, a dcf.Assumptions, r dcf.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonDocument{Assumptions: a, Result: r})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatFactor(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
