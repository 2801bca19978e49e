// Package env reads individual environment variables outside the
// prefixed configuration block, such as the platform-provided PORT.
package env

import "os"

// Get reads key from the process environment, falling back when the
// variable is unset or empty.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
