package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/render"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts    *termfmt.TerminalOptions
	columns render.ColumnStrategy
	width   int
}

// NewTerminal creates a new terminal formatter
func NewTerminal(opts Options) Formatter {
	termOpts := termfmt.DefaultOptions()
	termOpts.Color = opts.Color
	termOpts.Emoji = opts.Emoji
	return &terminalFormatter{
		opts:    termOpts,
		columns: opts.Columns,
		width:   opts.MaxColumnWidth,
	}
}

func (f *terminalFormatter) Format(result *analysis.Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	for _, s := range sections(result, f.columns) {
		b.WriteString(s.title + "\n")
		b.WriteString(render.Text(s.table, render.TextOptions{Rounded: true, MaxColumnWidth: f.width}))
		b.WriteString("\n\n")
	}

	f.writeSummary(&b, result)

	return []byte(b.String()), nil
}

// writeHeader writes the report title inside a box
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	headerLen := len(ReportTitle)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + ReportTitle + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeSummary writes status and counts as a tree
func (f *terminalFormatter) writeSummary(b *strings.Builder, result *analysis.Result) {
	symbolKey := "statistics"
	if result.Failed() {
		symbolKey = "error"
	}
	b.WriteString(termfmt.GetEmoji(symbolKey, f.opts) + " Summary\n")

	items := []termfmt.TreeItem{
		{Label: "Status", Value: result.Status},
		{Label: "Message", Value: result.Message},
		{Label: "Technical", Value: fmt.Sprintf("%d specs", result.TechnicalCount)},
		{Label: "Pricing", Value: fmt.Sprintf("%d items", result.PricingCount), Last: true},
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
