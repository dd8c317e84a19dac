// Package common provides shared utilities for Carteira
package common

import "time"

// Freshness TTLs for fetched data
const (
	FreshnessPriceHistory = 1 * time.Hour
	FreshnessSentiment    = 1 * time.Hour
)

// IsFreshAt reports whether updated is within ttl of now
func IsFreshAt(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
