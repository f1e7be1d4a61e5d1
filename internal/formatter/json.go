package formatter

import (
	"encoding/json"

	"github.com/yildizm/TenderScope/internal/analysis"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// Format writes the normalized result. Record keys keep their backend order.
func (f *jsonFormatter) Format(result *analysis.Result) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
