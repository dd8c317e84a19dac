package renderer

import (
	"sort"
	"strings"

	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/services/panel"
)

const dateLayout = "2006-01-02"

type keyValue struct {
	Key   string
	Value string
}

type panelView struct {
	BaseCurrency string
	Period       string
	Start        string
	End          string
	Rows         int
	Shown        int
	Headers      []string
	Lines        []panelLine
	Unavailable  []keyValue
	Conversions  []conversionView
}

type panelLine struct {
	Date  string
	Cells []string
}

type conversionView struct {
	Pair    string
	Status  string
	Tickers string
}

func newPanelView(p *models.Panel, rows int) *panelView {
	if p == nil {
		return nil
	}
	if rows <= 0 {
		rows = DefaultPanelRows
	}
	v := &panelView{
		BaseCurrency: p.BaseCurrency,
		Period:       string(p.Period),
		Rows:         p.Len(),
		Headers:      p.Tickers,
	}
	if p.Len() > 0 {
		v.Start = p.Dates[0].Format(dateLayout)
		v.End = p.Dates[p.Len()-1].Format(dateLayout)
	}
	for _, row := range panel.Tail(p, rows) {
		line := panelLine{Date: row.Date.Format(dateLayout)}
		for _, c := range row.Cells {
			if !c.Observed() {
				line.Cells = append(line.Cells, "-")
				continue
			}
			line.Cells = append(line.Cells, number(c.Value))
		}
		v.Lines = append(v.Lines, line)
	}
	v.Shown = len(v.Lines)
	v.Unavailable = sortedReasons(p.Unavailable)
	for _, c := range p.Conversions {
		v.Conversions = append(v.Conversions, conversionView{
			Pair:    c.Pair,
			Status:  statusText(c.Status, c.Reason),
			Tickers: joinTickers(c.Tickers),
		})
	}
	return v
}

func sortedReasons(m map[string]string) []keyValue {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]keyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyValue{Key: k, Value: m[k]})
	}
	return out
}

func joinTickers(tickers []string) string {
	return strings.Join(tickers, ", ")
}

type metricsView struct {
	BaseCurrency string
	Benchmark    string
	Records      []metricsRow
	Unconverted  string
}

type metricsRow struct {
	Ticker     string
	Points     int
	Total      string
	Annualized string
	Volatility string
	Sharpe     string
	Drawdown   string
	Alpha      string
	Beta       string
	Status     string
}

func newMetricsRow(r *models.MetricsRecord) metricsRow {
	return metricsRow{
		Ticker:     r.Ticker,
		Points:     r.Points,
		Total:      Percent(r.TotalReturn),
		Annualized: Percent(r.AnnualizedReturn),
		Volatility: Percent(r.AnnualizedVolatility),
		Sharpe:     ratio(r.Sharpe),
		Drawdown:   Percent(r.MaxDrawdown),
		Alpha:      Percent(r.Alpha),
		Beta:       ratio(r.Beta),
		Status:     statusText(r.Status, r.Reason),
	}
}

func newMetricsView(r *models.MetricsReport, weighted *models.MetricsRecord) *metricsView {
	if r == nil && weighted == nil {
		return nil
	}
	v := &metricsView{}
	if r != nil {
		v.BaseCurrency = r.BaseCurrency
		v.Benchmark = r.Benchmark
		var unconverted []string
		for _, rec := range r.Records {
			v.Records = append(v.Records, newMetricsRow(rec))
			if rec.Status == models.StatusUnconverted {
				unconverted = append(unconverted, rec.Ticker)
			}
		}
		v.Unconverted = joinTickers(unconverted)
	}
	if weighted != nil {
		v.Records = append(v.Records, newMetricsRow(weighted))
	}
	return v
}

type projectionView struct {
	Ticker      string
	OK          bool
	Status      string
	LastPrice   string
	Horizon     int
	Simulations int
	Seed        string
	Mu          string
	Sigma       string
	P10         string
	P50         string
	P90         string
	LossChance  string
	Bands       []bandView
}

type bandView struct {
	Day int
	P10 string
	P50 string
	P90 string
}

func newProjectionView(r *models.ProjectionResult, currency string) *projectionView {
	if r == nil {
		return nil
	}
	v := &projectionView{
		Ticker:      r.Ticker,
		OK:          r.Status == models.StatusOK,
		Status:      statusText(r.Status, r.Reason),
		Horizon:     r.HorizonDays,
		Simulations: r.Simulations,
		Seed:        "random",
		P10:         optAmount(r.P10, currency),
		P50:         optAmount(r.P50, currency),
		P90:         optAmount(r.P90, currency),
		LossChance:  Percent(r.ProbabilityOfLoss),
	}
	if r.Seed != nil {
		v.Seed = uintString(*r.Seed)
	}
	if v.OK {
		v.LastPrice = AmountFloat(r.LastPrice, currency)
		v.Mu = Percent(models.Some(r.Mu))
		v.Sigma = Percent(models.Some(r.Sigma))
	}
	for _, b := range weeklyBands(r.Bands) {
		v.Bands = append(v.Bands, bandView{
			Day: b.Day,
			P10: AmountFloat(b.P10, currency),
			P50: AmountFloat(b.P50, currency),
			P90: AmountFloat(b.P90, currency),
		})
	}
	return v
}

// weeklyBands keeps every fifth day and the final day
func weeklyBands(bands []models.QuantileBand) []models.QuantileBand {
	var out []models.QuantileBand
	for i, b := range bands {
		if b.Day%5 == 0 || i == len(bands)-1 {
			out = append(out, b)
		}
	}
	return out
}

type portfolioView struct {
	AsOf        string
	Currency    string
	Rows        []positionView
	Value       string
	Invested    string
	PnL         string
	Return      string
	Unpriced    string
	Unconverted string
}

type positionView struct {
	Ticker   string
	Quantity string
	AvgCost  string
	Price    string
	Value    string
	Invested string
	PnL      string
	PnLPct   string
	Weight   string
	Status   string
}

func newPortfolioView(s *models.PortfolioSnapshot) *portfolioView {
	if s == nil {
		return nil
	}
	v := &portfolioView{
		Currency:    s.Currency,
		Value:       Amount(s.TotalValue, s.Currency),
		Invested:    Amount(s.TotalInvested, s.Currency),
		PnL:         Amount(s.PnL, s.Currency),
		Return:      decimalPercent(s.ReturnPct),
		Unpriced:    joinTickers(s.Unpriced),
		Unconverted: joinTickers(s.Unconverted),
	}
	if !s.AsOf.IsZero() {
		v.AsOf = s.AsOf.Format(dateLayout)
	}
	for _, r := range s.Rows {
		priceCurrency, reason := s.Currency, ""
		if r.Currency != "" {
			priceCurrency, reason = r.Currency, "quoted in "+r.Currency
		}
		pv := positionView{
			Ticker:   r.Ticker,
			Quantity: r.Quantity.String(),
			AvgCost:  Amount(r.AvgCost, s.Currency),
			Price:    optAmount(r.Price, priceCurrency),
			Invested: Amount(r.Invested, s.Currency),
			Status:   statusText(r.Status, reason),
		}
		if r.Status == models.StatusOK {
			pv.Value = Amount(r.Value, s.Currency)
			pv.PnL = Amount(r.PnL, s.Currency)
			pv.PnLPct = decimalPercent(r.PnLPct)
			pv.Weight = decimalPercent(r.Weight)
		} else {
			pv.Value, pv.PnL, pv.PnLPct, pv.Weight = na, na, na, na
		}
		v.Rows = append(v.Rows, pv)
	}
	return v
}

type sentimentView struct {
	Available      bool
	Reason         string
	Value          string
	Classification string
	Label          string
	History        []keyValue
}

var historyLabels = map[string]string{
	"previous_close": "Previous close",
	"one_week_ago":   "One week ago",
	"one_month_ago":  "One month ago",
	"one_year_ago":   "One year ago",
}

func newSentimentView(s *models.Sentiment) *sentimentView {
	if s == nil {
		return nil
	}
	v := &sentimentView{
		Available:      s.Available,
		Reason:         s.Reason,
		Value:          number(s.Value),
		Classification: s.Classification,
		Label:          s.Label,
	}
	for _, h := range s.History {
		label, ok := historyLabels[h.Label]
		if !ok {
			label = h.Label
		}
		val := number(h.Value)
		if h.Text != "" {
			val += " (" + h.Text + ")"
		}
		v.History = append(v.History, keyValue{Key: label, Value: val})
	}
	return v
}

type reportView struct {
	Panel       *panelView
	Metrics     *metricsView
	Projections []*projectionView
	Portfolio   *portfolioView
	Sentiment   *sentimentView
}

func newReportView(r *Report) *reportView {
	v := &reportView{
		Panel:     newPanelView(r.Panel, r.PanelRows),
		Metrics:   newMetricsView(r.Metrics, r.Weighted),
		Portfolio: newPortfolioView(r.Portfolio),
		Sentiment: newSentimentView(r.Sentiment),
	}
	currency := ""
	if r.Panel != nil {
		currency = r.Panel.BaseCurrency
	}
	for _, p := range r.Projections {
		if p == nil {
			continue
		}
		v.Projections = append(v.Projections, newProjectionView(p, currency))
	}
	return v
}
