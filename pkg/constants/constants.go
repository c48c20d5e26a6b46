// Package constants provides shared constants for the dcf-valuation application.
package constants

// Input field names as they appear on the wire and in configuration files.
const (
	FieldFCF               = "fcf"
	FieldGrowthRate        = "growth_rate"
	FieldDiscountRate      = "discount_rate"
	FieldTerminalGrowth    = "terminal_growth"
	FieldYears             = "years"
	FieldSharesOutstanding = "shares_outstanding"
	FieldCashEquivalent    = "cash_equivalent"
	FieldTotalDebt         = "total_debt"
)

// InputFields lists every valuation input in canonical order. Validation
// reports failures in this order.
var InputFields = []string{
	FieldFCF,
	FieldGrowthRate,
	FieldDiscountRate,
	FieldTerminalGrowth,
	FieldYears,
	FieldSharesOutstanding,
	FieldCashEquivalent,
	FieldTotalDebt,
}

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxProjectionYears caps the explicit projection period regardless of
	// configured bounds, keeping a valuation's memory and time bounded
	MaxProjectionYears = 1000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// APIKeyEnv is the environment variable consulted for the Alpha Vantage key
	APIKeyEnv = "ALPHA_VANTAGE_KEY"
)

// Server configuration defaults
const (
	// DefaultServerAddress matches the address the web form posts to
	DefaultServerAddress = "127.0.0.1:8000"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Provider defaults
const (
	// DefaultProviderBaseURL is the Alpha Vantage query endpoint
	DefaultProviderBaseURL = "https://www.alphavantage.co/query"

	// DefaultProviderTimeoutSeconds bounds each upstream request
	DefaultProviderTimeoutSeconds = 10

	// DefaultCacheTTLHours is how long a fetched financials snapshot stays fresh
	DefaultCacheTTLHours = 24
)
