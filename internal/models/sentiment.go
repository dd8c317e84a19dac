package models

import "time"

// SentimentPoint is a historical reading of the sentiment index
type SentimentPoint struct {
	Label string  `json:"label"` // previous_close, one_week_ago, ...
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Sentiment is the Fear & Greed index reading. Available is false when the
// source could not be reached or is not configured.
type Sentiment struct {
	Available      bool             `json:"available"`
	Reason         string           `json:"reason,omitempty"`
	Value          float64          `json:"value"`
	Classification string           `json:"classification,omitempty"` // local band
	Label          string           `json:"label,omitempty"`          // provider text
	History        []SentimentPoint `json:"history,omitempty"`
	FetchedAt      time.Time        `json:"fetched_at,omitempty"`
}
