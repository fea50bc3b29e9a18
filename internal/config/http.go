package config

const (
	HCType           = "Content-Type"
	HCacheControl    = "Cache-Control"
	HAuthorization   = "Authorization"
	HRequestID       = "X-Request-Id"
	HRetryAfter      = "Retry-After"
	BearerPrefix     = "Bearer "
	CTypeJSON        = "application/json"
	CTypeHTML        = "text/html; charset=utf-8"
	CTypeEventStream = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)
