package models

import (
	"strings"
	"time"
)

// Period is a lookback window for price history
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
)

// Periods lists every supported lookback in ascending length
func Periods() []Period {
	return []Period{Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y}
}

// ParsePeriod validates a period code
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods() {
		if p == known {
			return p, nil
		}
	}
	return "", NewValidationError("period", "unsupported period %q (want one of 1mo, 3mo, 6mo, 1y, 2y, 5y)", s)
}

// Months returns the length of the period in calendar months
func (p Period) Months() int {
	switch p {
	case Period1Mo:
		return 1
	case Period3Mo:
		return 3
	case Period6Mo:
		return 6
	case Period1Y:
		return 12
	case Period2Y:
		return 24
	case Period5Y:
		return 60
	}
	return 0
}

// Start returns the first calendar date covered by the period ending at now
func (p Period) Start(now time.Time) time.Time {
	return NormalizeDate(now.AddDate(0, -p.Months(), 0))
}
