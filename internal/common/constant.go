package common

// RequestIDHeaderName is the HTTP header and gRPC metadata key used to
// correlate a request across log lines.
const RequestIDHeaderName = "X-Request-ID"

// BearerScheme prefixes session tokens in the Authorization header.
const BearerScheme = "Bearer"
