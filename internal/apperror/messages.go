package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",
	CodeUnknownProvider:    "Unknown quote provider",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Provider adapter errors
	CodeUnsupportedChain:  "Provider has no endpoint for this chain",
	CodeTransientFailure:  "Request failed after retries",
	CodeMalformedResponse: "Provider response is missing expected fields",
	CodeQuoteFailed:       "Failed to fetch quote",

	// Sizing errors
	CodePriceLookupUnavailable: "USD price lookup unavailable",
	CodeInvalidSellSize:        "Invalid sell size",

	// Spread/report errors
	CodeSpreadCalculationError: "Spread calculation error",
	CodeInsufficientQuotes:     "Not enough valid quotes to compare",
	CodeReportWriteFailed:      "Failed to write report",
	CodeWebhookDeliveryFailed:  "Failed to deliver webhook notification",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
