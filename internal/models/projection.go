package models

// QuantileBand holds the simulated price quantiles for one future day
type QuantileBand struct {
	Day int     `json:"day"`
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// ProjectionResult is the outcome of a Monte Carlo price projection
type ProjectionResult struct {
	Ticker            string         `json:"ticker"`
	Status            Status         `json:"status"`
	Reason            string         `json:"reason,omitempty"`
	LastPrice         float64        `json:"last_price"`
	HorizonDays       int            `json:"horizon_days"`
	Simulations       int            `json:"simulations"`
	Seed              *uint64        `json:"seed,omitempty"`
	Mu                float64        `json:"mu"`
	Sigma             float64        `json:"sigma"`
	P10               Optional       `json:"p10"`
	P50               Optional       `json:"p50"`
	P90               Optional       `json:"p90"`
	ProbabilityOfLoss Optional       `json:"probability_of_loss"`
	Bands             []QuantileBand `json:"bands,omitempty"`
}
