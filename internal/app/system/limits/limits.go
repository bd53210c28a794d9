// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody caps every decoded JSON request. Banner images may arrive
	// inline as data: URLs, so this is larger than a plain form needs.
	MaxJSONBody = 2 << 20 // 2 MB
)
