package piston

import (
	"time"
)

// Config holds the configuration for the Piston gateway client.
type Config struct {
	// BaseURL is the API root; "/execute" is appended.
	BaseURL string
	// APIKey is sent as a bearer token when set. The public instance needs none.
	APIKey string
	// Timeout bounds one HTTP round trip. Zero means no client-side limit.
	Timeout time.Duration
	// MaxResponseBytes caps how much of the response body is read.
	MaxResponseBytes int64
}

// DefaultConfig points at the public emkc.org instance.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://emkc.org/api/v2/piston",
		// 1 MB of program output is plenty for an editor pane
		MaxResponseBytes: 1 << 20,
	}
}
