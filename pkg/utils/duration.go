package utils

import (
	"strconv"
	"strings"
	"time"
)

// DefaultTokenExpiry is used when a duration string cannot be parsed
const DefaultTokenExpiry = 7 * 24 * time.Hour

// ParseExpiry parses duration strings with d/h/m/s unit suffixes
// (e.g. "7d", "12h", "30m", "45s"). Unrecognized formats fall back
// to DefaultTokenExpiry.
func ParseExpiry(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return DefaultTokenExpiry
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value <= 0 {
		return DefaultTokenExpiry
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	case 'h':
		return time.Duration(value) * time.Hour
	case 'm':
		return time.Duration(value) * time.Minute
	case 's':
		return time.Duration(value) * time.Second
	default:
		return DefaultTokenExpiry
	}
}
