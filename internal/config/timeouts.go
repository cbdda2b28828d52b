package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing and retry-budget values.
// These values can be customized via environment variables.
type Timeouts struct {
	CallTimeout        time.Duration // Per-request timeout for document store calls
	PollInterval       time.Duration // Sleep between status polls
	WaitCeiling        time.Duration // Hard ceiling on waiting for the terminal status
	TokenAttempts      int           // Attempts to obtain a credential
	TokenRetryInterval time.Duration // Constant sleep between credential attempts
	ValidateAttempts   int           // Attempts to validate an obtained token
	StoreAttempts      int           // Attempts per document store request
	BackoffBase        time.Duration // Initial backoff delay
	BackoffJitterMax   time.Duration // Upper bound of random jitter added per doubling
}

// LoadTimeouts loads timing configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PROVSYNC_CALL_TIMEOUT (default: 5s)
//   - PROVSYNC_POLL_INTERVAL (default: 10s)
//   - PROVSYNC_WAIT_CEILING (default: 45m)
//   - PROVSYNC_TOKEN_ATTEMPTS (default: 5)
//   - PROVSYNC_TOKEN_RETRY_INTERVAL (default: 2s)
//   - PROVSYNC_VALIDATE_ATTEMPTS (default: 3)
//   - PROVSYNC_STORE_ATTEMPTS (default: 5)
//   - PROVSYNC_BACKOFF_BASE (default: 1s)
//   - PROVSYNC_BACKOFF_JITTER_MAX (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		CallTimeout:        parseDuration("PROVSYNC_CALL_TIMEOUT", 5*time.Second),
		PollInterval:       parseDuration("PROVSYNC_POLL_INTERVAL", 10*time.Second),
		WaitCeiling:        parseDuration("PROVSYNC_WAIT_CEILING", 45*time.Minute),
		TokenAttempts:      parseInt("PROVSYNC_TOKEN_ATTEMPTS", 5),
		TokenRetryInterval: parseDuration("PROVSYNC_TOKEN_RETRY_INTERVAL", 2*time.Second),
		ValidateAttempts:   parseInt("PROVSYNC_VALIDATE_ATTEMPTS", 3),
		StoreAttempts:      parseInt("PROVSYNC_STORE_ATTEMPTS", 5),
		BackoffBase:        parseDuration("PROVSYNC_BACKOFF_BASE", 1*time.Second),
		BackoffJitterMax:   parseDuration("PROVSYNC_BACKOFF_JITTER_MAX", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
