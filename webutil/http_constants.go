package webutil

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"

	ContentTypeJSONUTF8      = "application/json; charset=utf-8"
	ContentTypeTextPlainUTF8 = "text/plain; charset=utf-8"

	// MaxJSONBodyBytes bounds JSON request bodies.
	MaxJSONBodyBytes = 1 << 20
)
