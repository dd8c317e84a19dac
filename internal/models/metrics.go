package models

// MetricsRecord holds risk and return figures for one ticker or portfolio.
// Every figure is explicitly N/A when it cannot be computed.
type MetricsRecord struct {
	Ticker               string   `json:"ticker"`
	Points               int      `json:"points"`
	TotalReturn          Optional `json:"total_return"`
	AnnualizedReturn     Optional `json:"annualized_return"`
	AnnualizedVolatility Optional `json:"annualized_volatility"`
	Sharpe               Optional `json:"sharpe"`
	MaxDrawdown          Optional `json:"max_drawdown"`
	Alpha                Optional `json:"alpha"` // daily units
	Beta                 Optional `json:"beta"`
	RegressionPoints     int      `json:"regression_points"`
	Status               Status   `json:"status"`
	Reason               string   `json:"reason,omitempty"`
}

// MetricsReport is the ordered output of a metrics pass over a panel
type MetricsReport struct {
	BaseCurrency string           `json:"base_currency"`
	Benchmark    string           `json:"benchmark,omitempty"`
	Records      []*MetricsRecord `json:"records"`
}

// Get returns the record for ticker
func (r *MetricsReport) Get(ticker string) (*MetricsRecord, bool) {
	for _, rec := range r.Records {
		if rec.Ticker == ticker {
			return rec, true
		}
	}
	return nil, false
}
