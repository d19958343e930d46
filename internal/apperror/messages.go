package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Orderbook aggregation errors
	CodeSourceUnavailable:  "Exchange source unavailable after exhausting reconnect attempts",
	CodeHandshakeFailed:    "Exchange feed handshake failed",
	CodeDecodeError:        "Failed to decode exchange feed frame",
	CodeNoSourcesAvailable: "No configured exchange source is available for this pair",
	CodeInvalidRequest:     "Invalid or unsupported traded pair",
	CodeTransportError:     "Subscriber RPC transport failed",
	CodeSubscriberLagging:  "Subscriber fell behind and was disconnected",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
