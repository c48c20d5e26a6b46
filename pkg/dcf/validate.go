package dcf

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"go.uber.org/multierr"
)

// Bounds holds optional business-rule limits layered on top of the
// mathematically required checks. A nil limit is not enforced.
// MaxProjectionYears can only tighten constants.MaxProjectionYears.
type Bounds struct {
	MinGrowthRate      *float64 `yaml:"minGrowthRate,omitempty" mapstructure:"minGrowthRate"`
	MaxGrowthRate      *float64 `yaml:"maxGrowthRate,omitempty" mapstructure:"maxGrowthRate"`
	MinDiscountRate    *float64 `yaml:"minDiscountRate,omitempty" mapstructure:"minDiscountRate"`
	MaxDiscountRate    *float64 `yaml:"maxDiscountRate,omitempty" mapstructure:"maxDiscountRate"`
	MinTerminalGrowth  *float64 `yaml:"minTerminalGrowth,omitempty" mapstructure:"minTerminalGrowth"`
	MaxTerminalGrowth  *float64 `yaml:"maxTerminalGrowth,omitempty" mapstructure:"maxTerminalGrowth"`
	MaxProjectionYears int      `yaml:"maxProjectionYears,omitempty" mapstructure:"maxProjectionYears"`
}

// Validator checks raw input against the required constraints and any
// configured Bounds. The zero value enforces no bounds.
type Validator struct {
	Bounds Bounds
}

// NewValidator returns a Validator enforcing the given bounds.
func NewValidator(bounds Bounds) *Validator {
	return &Validator{Bounds: bounds}
}

// Validate checks raw input with no additional bounds.
func Validate(raw map[string]interface{}) (Assumptions, error) {
	return (&Validator{}).Validate(raw)
}

// Validate converts raw into Assumptions. Every failing field produces a
// *ValidationError; per-field parse failures come first in canonical field
// order, followed by range and cross-field failures. Use FieldErrors to list
// them. On error the returned Assumptions is
// the zero value. raw is never modified.
func (v *Validator) Validate(raw map[string]interface{}) (Assumptions, error) {
	var errs error
	values := make(map[string]float64, len(constants.InputFields))

	for _, field := range constants.InputFields {
		value, err := lookupNumber(raw, field)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		values[field] = value
	}

	years, yearsOK := values[constants.FieldYears]
	if yearsOK {
		if err := checkYears(years); err != nil {
			errs = multierr.Append(errs, err)
			yearsOK = false
		}
	}

	if shares, ok := values[constants.FieldSharesOutstanding]; ok && shares <= 0 {
		errs = multierr.Append(errs, &ValidationError{
			Field:  constants.FieldSharesOutstanding,
			Reason: ErrNotPositive,
			Value:  shares,
		})
	}

	discount, discountOK := values[constants.FieldDiscountRate]
	terminal, terminalOK := values[constants.FieldTerminalGrowth]
	if discountOK && discount <= -1 {
		errs = multierr.Append(errs, &ValidationError{
			Field:  constants.FieldDiscountRate,
			Reason: ErrOutOfBounds,
			Value:  discount,
			Detail: "discount factor is undefined for rates at or below -1",
		})
	} else if discountOK && terminalOK && discount <= terminal {
		errs = multierr.Append(errs, &ValidationError{
			Field:  constants.FieldDiscountRate,
			Reason: ErrDiscountNotAboveTerminal,
			Value:  discount,
			Detail: fmt.Sprintf("terminal growth is %v", terminal),
		})
	}

	errs = multierr.Append(errs, v.checkBounds(values, yearsOK))

	if errs != nil {
		return Assumptions{}, errs
	}

	return Assumptions{
		LatestFCF:          values[constants.FieldFCF],
		GrowthRate:         values[constants.FieldGrowthRate],
		DiscountRate:       discount,
		TerminalGrowth:     terminal,
		ProjectionYears:    int(years),
		SharesOutstanding:  values[constants.FieldSharesOutstanding],
		CashAndEquivalents: values[constants.FieldCashEquivalent],
		TotalDebt:          values[constants.FieldTotalDebt],
	}, nil
}

// FieldErrors lists every *ValidationError contained in err.
func FieldErrors(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range multierr.Errors(err) {
		var vErr *ValidationError
		if errors.As(e, &vErr) {
			out = append(out, vErr)
		}
	}
	return out
}

func (v *Validator) checkBounds(values map[string]float64, yearsOK bool) error {
	var errs error
	rateLimits := []struct {
		field    string
		min, max *float64
	}{
		{constants.FieldGrowthRate, v.Bounds.MinGrowthRate, v.Bounds.MaxGrowthRate},
		{constants.FieldDiscountRate, v.Bounds.MinDiscountRate, v.Bounds.MaxDiscountRate},
		{constants.FieldTerminalGrowth, v.Bounds.MinTerminalGrowth, v.Bounds.MaxTerminalGrowth},
	}
	for _, limit := range rateLimits {
		value, ok := values[limit.field]
		if !ok {
			continue
		}
		if limit.min != nil && value < *limit.min {
			errs = multierr.Append(errs, &ValidationError{
				Field:  limit.field,
				Reason: ErrOutOfBounds,
				Value:  value,
				Detail: fmt.Sprintf("minimum is %v", *limit.min),
			})
		}
		if limit.max != nil && value > *limit.max {
			errs = multierr.Append(errs, &ValidationError{
				Field:  limit.field,
				Reason: ErrOutOfBounds,
				Value:  value,
				Detail: fmt.Sprintf("maximum is %v", *limit.max),
			})
		}
	}

	if yearsOK && v.Bounds.MaxProjectionYears > 0 && int(values[constants.FieldYears]) > v.Bounds.MaxProjectionYears {
		errs = multierr.Append(errs, &ValidationError{
			Field:  constants.FieldYears,
			Reason: ErrOutOfBounds,
			Value:  values[constants.FieldYears],
			Detail: fmt.Sprintf("maximum is %d", v.Bounds.MaxProjectionYears),
		})
	}
	return errs
}

func checkYears(years float64) error {
	switch {
	case math.Trunc(years) != years:
		return &ValidationError{Field: constants.FieldYears, Reason: ErrNotInteger, Value: years}
	case years <= 0:
		return &ValidationError{Field: constants.FieldYears, Reason: ErrNotPositive, Value: years}
	case years > constants.MaxProjectionYears:
		return &ValidationError{
			Field:  constants.FieldYears,
			Reason: ErrOutOfBounds,
			Value:  years,
			Detail: fmt.Sprintf("maximum is %d", constants.MaxProjectionYears),
		}
	}
	return nil
}

// lookupNumber extracts field from raw as a finite float64. A nil value or a
// blank string counts as missing, since that is what an empty form field
// serializes to.
func lookupNumber(raw map[string]interface{}, field string) (float64, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return 0, &ValidationError{Field: field, Reason: ErrMissing}
	}
	if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
		return 0, &ValidationError{Field: field, Reason: ErrMissing, Value: value}
	}

	number, ok := toFloat(value)
	if !ok {
		return 0, &ValidationError{Field: field, Reason: ErrNotNumeric, Value: value}
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, &ValidationError{Field: field, Reason: ErrNotFinite, Value: value}
	}
	return number, nil
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		return parseFloat(v.String())
	case string:
		return parseFloat(strings.TrimSpace(v))
	}
	return 0, false
}

// parseFloat treats out-of-range literals as numeric so they are reported as
// non-finite rather than non-numeric.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
