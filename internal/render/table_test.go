package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/TenderScope/internal/analysis"
)

func decodeRecords(t *testing.T, raw string) []analysis.Record {
	t.Helper()
	var records []analysis.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestBuild_FirstRecordColumns(t *testing.T) {
	records := decodeRecords(t, `[{"requirement_id":"T1","risk_level":"high"}]`)

	tbl := Build(records, FirstRecord)

	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, []string{"Requirement Id", "Risk Level"}, tbl.Titles())
	assert.Equal(t, [][]string{{"T1", "high"}}, tbl.Rows)
}

func TestBuild_HeterogeneousRecords(t *testing.T) {
	records := decodeRecords(t, `[
		{"a": 1, "b": 2},
		{"a": 3, "c": 4}
	]`)

	tbl := Build(records, FirstRecord)
	assert.Equal(t, []string{"A", "B"}, tbl.Titles())
	assert.Equal(t, [][]string{{"1", "2"}, {"3", Placeholder}}, tbl.Rows)

	union := Build(records, UnionOfKeys)
	assert.Equal(t, []string{"A", "B", "C"}, union.Titles())
	assert.Equal(t, [][]string{{"1", "2", Placeholder}, {"3", Placeholder, "4"}}, union.Rows)
}

func TestBuild_NullAndEmptyValues(t *testing.T) {
	records := decodeRecords(t, `[{"gaps": null, "evidence": "", "ok": false}]`)

	tbl := Build(records, FirstRecord)
	assert.Equal(t, [][]string{{Placeholder, "", "false"}}, tbl.Rows)
}

func TestBuild_Empty(t *testing.T) {
	tbl := Build(nil, FirstRecord)
	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Columns)

	assert.Equal(t, NoData, Text(tbl, TextOptions{}))
}

func TestBuild_Deterministic(t *testing.T) {
	records := decodeRecords(t, `[{"z":1,"y":2,"x":3},{"x":4,"z":5}]`)

	first := Build(records, FirstRecord)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Build(records, FirstRecord))
	}
	assert.Equal(t, []string{"Z", "Y", "X"}, first.Titles())
}

func TestBuild_DoesNotMutateRecords(t *testing.T) {
	records := decodeRecords(t, `[{"item_id":"P1"}]`)
	Build(records, FirstRecord)

	assert.Equal(t, []string{"item_id"}, records[0].Keys())
	value, ok := records[0].Get("item_id")
	require.True(t, ok)
	assert.Equal(t, "P1", value)
}

func TestHeader(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"requirement_id", "Requirement Id"},
		{"risk_level", "Risk Level"},
		{"variance_percent", "Variance Percent"},
		{"name", "Name"},
		{"HTTPStatus", "HTTPStatus"},
		{"a__b", "A  B"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Header(tt.key))
		})
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, Placeholder},
		{"string", "compliant", "compliant"},
		{"integer number", json.Number("42"), "42"},
		{"decimal number", json.Number("12.50"), "12.5"},
		{"whole float", json.Number("1.0"), "1"},
		{"negative", json.Number("-3.25"), "-3.25"},
		{"float64", 0.1, "0.1"},
		{"bool", true, "true"},
		{"int", 7, "7"},
		{"array", []any{"a", json.Number("1")}, `["a",1]`},
		{"object", map[string]any{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cell(tt.value))
		})
	}
}

func TestParseColumnStrategy(t *testing.T) {
	s, err := ParseColumnStrategy("")
	require.NoError(t, err)
	assert.Equal(t, FirstRecord, s)

	s, err = ParseColumnStrategy("union")
	require.NoError(t, err)
	assert.Equal(t, UnionOfKeys, s)

	_, err = ParseColumnStrategy("widest")
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	records := decodeRecords(t, `[{"requirement_id":"T1","risk_level":"high"}]`)
	out := Text(Build(records, FirstRecord), TextOptions{Rounded: true})

	assert.Contains(t, out, "Requirement Id")
	assert.Contains(t, out, "Risk Level")
	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "high")
	assert.NotContains(t, out, "REQUIREMENT")
}

func TestMarkdown(t *testing.T) {
	records := decodeRecords(t, `[{"item_id":"P1","variance":null}]`)
	tbl := Build(records, FirstRecord)

	md := Markdown(tbl)
	assert.Contains(t, md, "| Item Id | Variance |")
	assert.Contains(t, md, "| P1 | - |")

	assert.Equal(t, "_"+NoData+"_", Markdown(Table{}))
}
