// Package valuation runs the DCF engine on behalf of the CLI and the HTTP
// service: it validates and computes with logging, shapes the wire response
// and fills inputs from a ticker lookup.
package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/dcf-valuation/internal/financials"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"go.uber.org/zap"
)

// ErrNoProvider is returned by lookups when no financial data provider is
// configured.
var ErrNoProvider = errors.New("no financial data provider configured")

// Report is the outcome of one valuation.
type Report struct {
	Assumptions dcf.Assumptions
	Result      dcf.Result
	Duration    time.Duration
}

// Service validates and computes valuations. It is safe for concurrent use.
type Service struct {
	logger    *zap.Logger
	validator *dcf.Validator
	provider  financials.Provider
}

// NewService builds a Service. provider may be nil, in which case lookups
// fail with ErrNoProvider.
func NewService(logger *zap.Logger, bounds dcf.Bounds, provider financials.Provider) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:    logger,
		validator: dcf.NewValidator(bounds),
		provider:  provider,
	}
}

// HasProvider reports whether ticker lookups are available.
func (s *Service) HasProvider() bool {
	return s.provider != nil
}

// Value validates raw and computes the valuation.
func (s *Service) Value(raw map[string]interface{}) (*Report, error) {
	start := time.Now()

	assumptions, err := s.validator.Validate(raw)
	if err != nil {
		fields := make([]string, 0)
		for _, fieldErr := range dcf.FieldErrors(err) {
			fields = append(fields, fieldErr.Field)
		}
		s.logger.Info("valuation input rejected",
			zap.String("op", "valuation.Value"),
			zap.Strings("fields", fields),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := dcf.Compute(assumptions)
	if err != nil {
		s.logger.Error("valuation failed",
			zap.String("op", "valuation.Value"),
			zap.Error(err),
		)
		return nil, err
	}

	elapsed := time.Since(start)
	s.logger.Info("valuation computed",
		zap.String("op", "valuation.Value"),
		zap.Float64("enterprise_value", result.EnterpriseValue),
		zap.Float64("intrinsic_value_per_share", result.IntrinsicValuePerShare),
		zap.Int("years", assumptions.ProjectionYears),
		zap.Duration("duration", elapsed),
	)

	return &Report{Assumptions: assumptions, Result: result, Duration: elapsed}, nil
}

// Lookup fetches the latest financials for symbol.
func (s *Service) Lookup(ctx context.Context, symbol string) (*financials.Financials, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	f, err := s.provider.Fetch(ctx, symbol)
	if err != nil {
		s.logger.Warn("financials lookup failed",
			zap.String("op", "valuation.Lookup"),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return nil, err
	}
	return f, nil
}

// Prefill returns a copy of raw with the company figures for symbol filled
// in. Fetched figures replace any supplied values; rates and years are left
// to the caller.
func (s *Service) Prefill(ctx context.Context, symbol string, raw map[string]interface{}) (map[string]interface{}, error) {
	f, err := s.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	filled := make(map[string]interface{}, len(raw)+4)
	for key, value := range raw {
		filled[key] = value
	}
	filled[constants.FieldFCF] = f.FCF
	filled[constants.FieldSharesOutstanding] = f.Shares
	filled[constants.FieldCashEquivalent] = f.Cash
	filled[constants.FieldTotalDebt] = f.Debt

	s.logger.Debug("assumptions prefilled",
		zap.String("op", "valuation.Prefill"),
		zap.String("symbol", f.Symbol),
		zap.String("source", f.Source),
	)
	return filled, nil
}
