package errors

// SQLSTATE codes used by the engine, following the PostgreSQL error code
// conventions: https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 00 - Successful Completion
const (
	SuccessfulCompletion = "00000"
)

// Class 01 - Warning
const (
	Warning            = "01000"
	DeprecatedFeature  = "01P01"
	OptimizerGaveUp    = "01C01" // engine-specific: plan optimization ended early
	StatisticsMissing  = "01C02" // engine-specific: estimates degraded to unknown
)

// Class 0A - Feature Not Supported
const (
	FeatureNotSupported = "0A000"
)

// Class 22 - Data Exception
const (
	DataException         = "22000"
	NumericValueOutOfRange = "22003"
	InvalidParameterValue  = "22023"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	SyntaxError     = "42601"
	UndefinedTable  = "42P01"
	UndefinedColumn = "42703"
)

// Class XX - Internal Error
const (
	InternalError  = "XX000"
	DataCorrupted  = "XX001"
	IndexCorrupted = "XX002"
)
