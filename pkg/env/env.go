// Package env holds small helpers for reading process environment values
// outside the envconfig-managed configuration.
package env

import "os"

// Get reads key from the environment, returning fallback when the variable
// is unset or blank.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
