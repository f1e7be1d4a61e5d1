// Package render turns schema-less record collections into tables.
//
// Columns are discovered from the data itself: by default the key set of the
// first record, in that record's key order. Header and cell formatting are
// pure display transforms; record keys and values are never modified.
package render

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yildizm/TenderScope/internal/analysis"
)

const (
	// Placeholder is shown for null or missing cell values
	Placeholder = "-"

	// NoData replaces a table whose collection is empty
	NoData = "No data available."
)

// ColumnStrategy decides which keys become columns
type ColumnStrategy string

const (
	// FirstRecord uses only the first record's keys
	FirstRecord ColumnStrategy = "first"

	// UnionOfKeys uses every key seen in any record, ordered by first appearance
	UnionOfKeys ColumnStrategy = "union"
)

// ParseColumnStrategy maps a config value onto a strategy
func ParseColumnStrategy(s string) (ColumnStrategy, error) {
	switch ColumnStrategy(s) {
	case "", FirstRecord:
		return FirstRecord, nil
	case UnionOfKeys:
		return UnionOfKeys, nil
	default:
		return "", fmt.Errorf("unknown column strategy: %s (must be one of: first, union)", s)
	}
}

// Column pairs a record key with its display title
type Column struct {
	Key   string
	Title string
}

// Table is the display form of one record collection
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Empty reports whether the table has nothing to show
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Titles returns the column titles in order
func (t Table) Titles() []string {
	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}
	return titles
}

// Build renders records into a table. The column set is computed once.
func Build(records []analysis.Record, strategy ColumnStrategy) Table {
	if len(records) == 0 {
		return Table{}
	}

	keys := DiscoverColumns(records, strategy)
	columns := make([]Column, len(keys))
	for i, key := range keys {
		columns[i] = Column{Key: key, Title: Header(key)}
	}

	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(keys))
		for j, key := range keys {
			value, ok := record.Get(key)
			if !ok {
				row[j] = Placeholder
				continue
			}
			row[j] = Cell(value)
		}
		rows[i] = row
	}

	return Table{Columns: columns, Rows: rows}
}

// DiscoverColumns returns the column keys for records
func DiscoverColumns(records []analysis.Record, strategy ColumnStrategy) []string {
	if len(records) == 0 {
		return nil
	}

	if strategy != UnionOfKeys {
		return records[0].Keys()
	}

	seen := make(map[string]bool)
	var keys []string
	for _, record := range records {
		for _, key := range record.Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Header converts a record key into a column title: underscores become
// spaces and each word is capitalized.
func Header(key string) string {
	spaced := strings.ReplaceAll(key, "_", " ")
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}

// Cell returns the display text of a value
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case string:
		return val
	case json.Number:
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return formatFloat(f)
	}
	return n.String()
}

// formatFloat prints the shortest representation, switching to exponent
// form for very large or very small magnitudes.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
