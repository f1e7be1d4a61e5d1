// Package formatter renders an analysis result for headless output.
package formatter

import (
	"fmt"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/render"
)

// ReportTitle heads every human-readable report
const ReportTitle = "Tender Intelligence Report"

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(result *analysis.Result) ([]byte, error)
}

// Options shared by the table-producing formatters
type Options struct {
	Columns        render.ColumnStrategy
	MaxColumnWidth int
	Color          bool
	Emoji          bool
}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	case "markdown":
		return NewMarkdown(opts), nil
	case "csv":
		return NewCSV(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be one of: text, json, markdown, csv)", name)
	}
}

// section is one record collection with its display title
type section struct {
	key   string
	title string
	table render.Table
}

// TechnicalTitle is the panel title for the technical collection
func TechnicalTitle(count int) string {
	return fmt.Sprintf("Technical Analysis (%d Specs)", count)
}

// PricingTitle is the panel title for the pricing collection
func PricingTitle(count int) string {
	return fmt.Sprintf("Pricing Analysis (%d Items)", count)
}

func sections(result *analysis.Result, columns render.ColumnStrategy) []section {
	return []section{
		{
			key:   "technical_analysis",
			title: TechnicalTitle(result.TechnicalCount),
			table: render.Build(result.TechnicalRecords, columns),
		},
		{
			key:   "pricing_analysis",
			title: PricingTitle(result.PricingCount),
			table: render.Build(result.PricingRecords, columns),
		},
	}
}
