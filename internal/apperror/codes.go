package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Orderbook aggregation error codes (spec §7).
const (
	// CodeSourceUnavailable: an Exchange Feed Adapter's Start could not
	// connect: the WebSocket dial still failed after wsconn's bounded
	// retries, or the adapter's circuit breaker was open.
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	// CodeHandshakeFailed: the adapter connected but sending its subscribe
	// frame failed, before any snapshot was ever received.
	CodeHandshakeFailed Code = "HANDSHAKE_FAILED"

	// CodeDecodeError: a feed frame failed to parse into the exchange's
	// native shape. Logged and skipped, never terminates the stream.
	CodeDecodeError Code = "DECODE_ERROR"

	// CodeNoSourcesAvailable: every configured adapter for a pair failed
	// to construct synchronously; the registry does not cache a handle.
	CodeNoSourcesAvailable Code = "NO_SOURCES_AVAILABLE"

	// CodeInvalidRequest: an RPC request named an empty or unsupported
	// TradedPair.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// CodeTransportError: a subscriber's RPC transport failed; only that
	// subscription is terminated.
	CodeTransportError Code = "TRANSPORT_ERROR"

	// CodeSubscriberLagging: a subscriber's fan-out buffer stayed full for
	// several consecutive publishes (each of those summaries was dropped for
	// it) and the broadcaster closed the subscription.
	CodeSubscriberLagging Code = "SUBSCRIBER_LAGGING"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
