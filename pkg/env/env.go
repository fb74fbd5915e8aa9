// Package env reads process settings that are needed before config.Load runs.
package env

import (
	"os"
	"strings"
)

// First returns the trimmed value of the first key that is set and non-blank.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}
