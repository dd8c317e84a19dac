// Package renderer renders analysis results as markdown
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/bobmcallan/carteira/internal/models"
)

//go:embed *.md
var templates embed.FS

// DefaultPanelRows is the number of trailing panel rows rendered
const DefaultPanelRows = 10

// Report groups the sections of a combined report. Nil sections are skipped.
type Report struct {
	Panel       *models.Panel
	PanelRows   int
	Metrics     *models.MetricsReport
	Weighted    *models.MetricsRecord
	Projections []*models.ProjectionResult
	Portfolio   *models.PortfolioSnapshot
	Sentiment   *models.Sentiment
}

// RenderPanel renders the last rows of the panel
func RenderPanel(p *models.Panel, rows int) string {
	if p == nil {
		return ""
	}
	return renderTemplate("panel", "panel.md", nil, newPanelView(p, rows))
}

// RenderMetrics renders the metrics table. weighted may be nil.
func RenderMetrics(r *models.MetricsReport, weighted *models.MetricsRecord) string {
	if r == nil && weighted == nil {
		return ""
	}
	return renderTemplate("metrics", "metrics.md", nil, newMetricsView(r, weighted))
}

// RenderProjection renders a projection summary and its quantile bands
func RenderProjection(r *models.ProjectionResult, currency string) string {
	if r == nil {
		return ""
	}
	return renderTemplate("projection", "projection.md", nil, newProjectionView(r, currency))
}

// RenderPortfolio renders a portfolio snapshot
func RenderPortfolio(s *models.PortfolioSnapshot) string {
	if s == nil {
		return ""
	}
	return renderTemplate("portfolio", "portfolio.md", nil, newPortfolioView(s))
}

// RenderSentiment renders the sentiment reading
func RenderSentiment(s *models.Sentiment) string {
	if s == nil {
		return ""
	}
	return renderTemplate("sentiment", "sentiment.md", nil, newSentimentView(s))
}

// RenderReport renders every non-nil section of r
func RenderReport(r *Report) string {
	partials := map[string]string{
		"panel":      "panel.md",
		"metrics":    "metrics.md",
		"projection": "projection.md",
		"portfolio":  "portfolio.md",
		"sentiment":  "sentiment.md",
	}
	return renderTemplate("report", "report.md", partials, newReportView(r))
}

// renderTemplate renders mainFile with the named partials available to it
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
