package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/render"
)

func scenarioResult(t *testing.T) *analysis.Result {
	t.Helper()
	payload, err := analysis.DecodePayload([]byte(`{
		"status": "completed",
		"technical": [{"requirement_id": "T1", "risk_level": "High", "gaps": null}],
		"pricing": []
	}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	return analysis.Normalize(payload)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "json", "markdown", "csv"} {
		if _, err := New(name, Options{}); err != nil {
			t.Errorf("New(%q) error = %v", name, err)
		}
	}
	if _, err := New("xml", Options{}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTerminalFormatter(t *testing.T) {
	out, err := NewTerminal(Options{Columns: render.FirstRecord}).Format(scenarioResult(t))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		ReportTitle,
		"Technical Analysis (1 Specs)",
		"Pricing Analysis (0 Items)",
		"Requirement Id",
		"Risk Level",
		"T1",
		"High",
		render.NoData,
		"completed",
		analysis.DefaultMessage,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q\n%s", want, text)
		}
	}

	// Technical table comes before pricing, summary last
	tech := strings.Index(text, "Technical Analysis")
	pricing := strings.Index(text, "Pricing Analysis")
	summary := strings.Index(text, "Summary")
	if !(tech < pricing && pricing < summary) {
		t.Errorf("Unexpected section order: technical=%d pricing=%d summary=%d", tech, pricing, summary)
	}
}

func TestTerminalFormatter_FailedResult(t *testing.T) {
	out, err := NewTerminal(Options{}).Format(analysis.FailedResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	if strings.Count(text, render.NoData) != 2 {
		t.Errorf("Expected both collections to show the placeholder\n%s", text)
	}
	if !strings.Contains(text, analysis.FailureMessage) {
		t.Errorf("Expected failure message in summary\n%s", text)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(scenarioResult(t))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded analysis.Result
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.TechnicalCount != 1 || decoded.PricingCount != 0 {
		t.Errorf("Unexpected counts %d/%d", decoded.TechnicalCount, decoded.PricingCount)
	}

	text := string(out)
	if strings.Index(text, "requirement_id") > strings.Index(text, "risk_level") {
		t.Error("Expected record keys in backend order")
	}
	if !strings.Contains(text, `"pricing_analysis": []`) {
		t.Errorf("Expected empty pricing array, got\n%s", text)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	f := &markdownFormatter{
		columns: render.FirstRecord,
		now:     func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}

	out, err := f.Format(scenarioResult(t))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# " + ReportTitle,
		"Generated: 2025-01-02 03:04:05",
		"## Technical Analysis (1 Specs)",
		"| Requirement Id | Risk Level | Gaps |",
		"| T1 | High | - |",
		"## Pricing Analysis (0 Items)",
		"_" + render.NoData + "_",
		"**Status:** completed",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, text)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("no_tenders_found"); got != `no\_tenders\_found` {
		t.Errorf("Unexpected escape result %q", got)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewCSV(Options{}).Format(scenarioResult(t))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	want := []string{
		"section,Requirement Id,Risk Level,Gaps",
		"technical_analysis,T1,High,-",
		"",
		"section",
		"pricing_analysis,No data available.",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d:\n%s", len(want), len(lines), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestSectionTitles(t *testing.T) {
	if got := TechnicalTitle(3); got != "Technical Analysis (3 Specs)" {
		t.Errorf("Unexpected technical title %q", got)
	}
	if got := PricingTitle(0); got != "Pricing Analysis (0 Items)" {
		t.Errorf("Unexpected pricing title %q", got)
	}
}
