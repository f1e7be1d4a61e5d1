package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/render"
)

// csvFormatter writes one CSV block per record collection. Each block has
// its own header row whose first column names the collection. An empty
// collection gets a single row holding the no-data notice.
type csvFormatter struct {
	columns render.ColumnStrategy
}

// NewCSV creates a new CSV formatter
func NewCSV(opts Options) Formatter {
	return &csvFormatter{columns: opts.Columns}
}

func (f *csvFormatter) Format(result *analysis.Result) ([]byte, error) {
	var b bytes.Buffer

	for i, s := range sections(result, f.columns) {
		if i > 0 {
			b.WriteString("\n")
		}

		writer := csv.NewWriter(&b)

		headers := append([]string{"section"}, s.table.Titles()...)
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}

		if s.table.Empty() {
			if err := writer.Write([]string{s.key, render.NoData}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}

		for _, row := range s.table.Rows {
			record := append([]string{s.key}, row...)
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("failed to flush CSV: %w", err)
		}
	}

	return b.Bytes(), nil
}
