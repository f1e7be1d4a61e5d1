package render

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TextOptions tune plain-text table output
type TextOptions struct {
	// Rounded selects rounded box corners instead of light lines
	Rounded bool

	// MaxColumnWidth wraps cells wider than this; zero disables wrapping
	MaxColumnWidth int
}

func newWriter(t Table, opts TextOptions) table.Writer {
	tw := table.NewWriter()

	style := table.StyleLight
	if opts.Rounded {
		style = table.StyleRounded
	}
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Title
	}
	tw.AppendHeader(header)

	for _, cells := range t.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		tw.AppendRow(row)
	}

	if opts.MaxColumnWidth > 0 {
		configs := make([]table.ColumnConfig, len(t.Columns))
		for i := range t.Columns {
			configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: opts.MaxColumnWidth}
		}
		tw.SetColumnConfigs(configs)
	}

	return tw
}

// Text draws the table with box characters, or returns NoData when empty
func Text(t Table, opts TextOptions) string {
	if t.Empty() {
		return NoData
	}
	return newWriter(t, opts).Render()
}

// Markdown renders the table as a GitHub-flavoured markdown table
func Markdown(t Table) string {
	if t.Empty() {
		return "_" + NoData + "_"
	}
	return newWriter(t, TextOptions{}).RenderMarkdown()
}
