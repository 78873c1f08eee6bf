package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeUnknownProvider    Code = "UNKNOWN_PROVIDER"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Scanner-specific error codes
const (
	// Provider adapter errors
	CodeUnsupportedChain  Code = "UNSUPPORTED_CHAIN"
	CodeTransientFailure  Code = "TRANSIENT_REQUEST_FAILURE"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeQuoteFailed       Code = "QUOTE_FAILED"

	// Sizing errors
	CodePriceLookupUnavailable Code = "PRICE_LOOKUP_UNAVAILABLE"
	CodeInvalidSellSize        Code = "INVALID_SELL_SIZE"

	// Spread/report errors
	CodeSpreadCalculationError Code = "SPREAD_CALCULATION_ERROR"
	CodeInsufficientQuotes     Code = "INSUFFICIENT_QUOTES"
	CodeReportWriteFailed      Code = "REPORT_WRITE_FAILED"
	CodeWebhookDeliveryFailed  Code = "WEBHOOK_DELIVERY_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
