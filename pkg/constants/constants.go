// Package constants provides shared constants for the emi-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of decimal places kept for currency values
	DecimalPlaces = 2

	// MonthlyFrequencyFactor is the number of months covered by a monthly period
	MonthlyFrequencyFactor = 1

	// QuarterlyFrequencyFactor is the number of months covered by a quarterly period
	QuarterlyFrequencyFactor = 3

	// MaxTenureMonths is the longest tenure a schedule may cover (100 years)
	MaxTenureMonths = 1200

	// CurrencySymbol is prefixed to formatted amounts
	CurrencySymbol = "₹"
)

// IRR solver defaults
const (
	// IRRLowerBound is the lower end of the bracket searched for a periodic IRR
	IRRLowerBound = 0.00001

	// IRRUpperBound is the upper end of the bracket searched for a periodic IRR
	IRRUpperBound = 1.0

	// BrentTolerance is the absolute x tolerance of the bracketed solver
	BrentTolerance = 2e-12

	// BrentMaxIterations caps the bracketed solver
	BrentMaxIterations = 100

	// NewtonGuess is the starting rate for Newton-Raphson
	NewtonGuess = 0.1

	// NewtonTolerance is the rate delta below which Newton-Raphson stops
	NewtonTolerance = 1e-6

	// NewtonMaxIterations caps Newton-Raphson
	NewtonMaxIterations = 1000

	// SolverMethodBrent selects the bracketed root finder
	SolverMethodBrent = "brent"

	// SolverMethodNewton selects Newton-Raphson
	SolverMethodNewton = "newton"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default calculation request file name
	DefaultConfigFile = "loan.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web form
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRequestsPerMinute is the default per-client request rate
	DefaultRequestsPerMinute = 120

	// DefaultRateLimitBurst is the default per-client burst size
	DefaultRateLimitBurst = 20
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
