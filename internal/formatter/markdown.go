package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/render"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	columns render.ColumnStrategy
	now     func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(opts Options) Formatter {
	return &markdownFormatter{columns: opts.Columns, now: time.Now}
}

func (f *markdownFormatter) Format(result *analysis.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# " + ReportTitle + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	for _, s := range sections(result, f.columns) {
		b.WriteString("## " + s.title + "\n\n")
		b.WriteString(render.Markdown(s.table))
		b.WriteString("\n\n")
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "**Status:** %s\n\n", escapeMarkdown(result.Status))
	b.WriteString(escapeMarkdown(result.Message) + "\n")

	return []byte(b.String()), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
