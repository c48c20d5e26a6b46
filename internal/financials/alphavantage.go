package financials

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"go.uber.org/zap"
)

// SourceAlphaVantage tags snapshots fetched from Alpha Vantage.
const SourceAlphaVantage = "alphavantage"

// ClientConfig configures an AlphaVantageClient.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AlphaVantageClient reads cash flow and overview data from Alpha Vantage.
type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewAlphaVantageClient builds a client, filling unset config with defaults.
func NewAlphaVantageClient(logger *zap.Logger, cfg ClientConfig) *AlphaVantageClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultProviderBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultProviderTimeoutSeconds * time.Second
	}
	return &AlphaVantageClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Fetch derives free cash flow from the latest annual cash flow report and
// reads share count, cash and debt from the company overview.
func (c *AlphaVantageClient) Fetch(ctx context.Context, symbol string) (*Financials, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	cashFlow, err := c.query(ctx, "CASH_FLOW", symbol)
	if err != nil {
		return nil, err
	}

	reports, _ := cashFlow["annualReports"].([]interface{})
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w for %s%s", ErrNoData, symbol, providerNote(cashFlow))
	}
	latest, _ := reports[0].(map[string]interface{})

	operating := parseNumber(latest["operatingCashflow"])
	capex := parseNumber(latest["capitalExpenditures"])
	changeAssets := parseNumber(latest["changeInOperatingAssets"])
	changeLiabilities := parseNumber(latest["changeInOperatingLiabilities"])

	fcf := 0.0
	if operating != 0 {
		fcf = operating - capex - changeAssets + changeLiabilities
	}

	overview, err := c.query(ctx, "OVERVIEW", symbol)
	if err != nil {
		return nil, err
	}

	result := &Financials{
		Symbol:    symbol,
		FCF:       fcf,
		Shares:    parseNumber(overview["SharesOutstanding"]),
		Cash:      parseNumber(overview["Cash"]),
		Debt:      parseNumber(overview["Debt"]),
		Source:    SourceAlphaVantage,
		FetchedAt: c.now().UTC(),
	}

	c.logger.Debug("fetched financials",
		zap.String("op", "financials.AlphaVantageClient.Fetch"),
		zap.String("symbol", symbol),
		zap.Float64("fcf", result.FCF),
		zap.Float64("shares", result.Shares),
	)
	return result, nil
}

func (c *AlphaVantageClient) query(ctx context.Context, function, symbol string) (map[string]interface{}, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %w", ErrUpstream, err)
	}
	params := endpoint.Query()
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, function, symbol, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s: alpha vantage returned status %d", ErrUpstream, function, symbol, resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %w", ErrUpstream, function, err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return payload, nil
}

// parseNumber reads a report value. Alpha Vantage reports missing figures as
// "None"; those, empty strings, nulls and anything unparseable count as 0.
func parseNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || trimmed == "None" {
			return 0
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	return 0
}

func providerNote(payload map[string]interface{}) string {
	for _, key := range []string{"Note", "Information", "Error Message"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return ": " + msg
		}
	}
	return ""
}
