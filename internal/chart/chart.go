// Package chart renders PNG charts of panels and projections
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/services/panel"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("16a34a"), // green-600
	drawing.ColorFromHex("d97706"), // amber-600
	drawing.ColorFromHex("7c3aed"), // violet-600
	drawing.ColorFromHex("0891b2"), // cyan-600
	drawing.ColorFromHex("db2777"), // pink-600
	drawing.ColorFromHex("4b5563"), // gray-600
}

// RenderRebased renders each panel column divided by its first observed
// price as one line. Columns with fewer than 2 observed prices are skipped.
// Returns raw PNG bytes.
func RenderRebased(p *models.Panel) ([]byte, error) {
	var series []chart.Series
	for i, line := range panel.Rebased(p) {
		if len(line.Dates) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name: line.Ticker,
			Style: chart.Style{
				StrokeColor: palette[i%len(palette)],
				StrokeWidth: 2,
			},
			XValues: line.Dates,
			YValues: line.Values,
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("need at least one ticker with 2 prices")
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Normalized prices (%s)", p.BaseCurrency),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: dateAxis(),
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	return render(&graph)
}

// RenderProjection renders the P10, P50 and P90 bands of a projection over
// trading days, with the last price as a dashed reference line.
// Returns raw PNG bytes.
func RenderProjection(r *models.ProjectionResult) ([]byte, error) {
	if r == nil || len(r.Bands) < 2 {
		return nil, fmt.Errorf("need at least 2 projection bands")
	}

	n := len(r.Bands) + 1
	days := make([]float64, n)
	p10 := make([]float64, n)
	p50 := make([]float64, n)
	p90 := make([]float64, n)
	last := make([]float64, n)

	days[0], p10[0], p50[0], p90[0], last[0] = 0, r.LastPrice, r.LastPrice, r.LastPrice, r.LastPrice
	for i, b := range r.Bands {
		days[i+1] = float64(b.Day)
		p10[i+1] = b.P10
		p50[i+1] = b.P50
		p90[i+1] = b.P90
		last[i+1] = r.LastPrice
	}

	band := func(name string, color drawing.Color, width float64, y []float64) chart.ContinuousSeries {
		return chart.ContinuousSeries{
			Name:    name,
			Style:   chart.Style{StrokeColor: color, StrokeWidth: width},
			XValues: days,
			YValues: y,
		}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s projection, %d simulations", r.Ticker, r.Simulations),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Trading days",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			band("P90", drawing.ColorFromHex("16a34a"), 1.5, p90),
			band("P50", drawing.ColorFromHex("2563eb"), 2.5, p50),
			band("P10", drawing.ColorFromHex("dc2626"), 1.5, p10),
			chart.ContinuousSeries{
				Name: "Last price",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
					StrokeWidth:     1,
					StrokeDashArray: []float64{5.0, 3.0},
				},
				XValues: days,
				YValues: last,
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	return render(&graph)
}

func dateAxis() chart.XAxis {
	return chart.XAxis{
		TickPosition: chart.TickPositionBetweenTicks,
		ValueFormatter: func(v interface{}) string {
			if t, ok := v.(float64); ok {
				return chart.TimeFromFloat64(t).Format("Jan 06")
			}
			if t, ok := v.(time.Time); ok {
				return t.Format("Jan 06")
			}
			return ""
		},
	}
}

func render(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
