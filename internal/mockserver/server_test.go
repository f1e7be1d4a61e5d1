package mockserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/TenderScope/internal/analysis"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestRun_DefaultScenario(t *testing.T) {
	ts := newTestServer(t, Options{})

	cfg := analysis.DefaultClientConfig()
	cfg.BaseURL = ts.URL
	client, err := analysis.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	payload, err := client.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := analysis.Normalize(payload)
	if result.Status != ScenarioCompleted {
		t.Errorf("Expected status %q, got %q", ScenarioCompleted, result.Status)
	}
	if result.TechnicalCount != 3 {
		t.Errorf("Expected 3 technical records, got %d", result.TechnicalCount)
	}
	if result.PricingCount != 2 {
		t.Errorf("Expected 2 pricing records, got %d", result.PricingCount)
	}

	wantKeys := []string{"requirement_id", "requirement_text", "compliance_status", "evidence", "gaps", "risk_level"}
	gotKeys := result.TechnicalRecords[0].Keys()
	if strings.Join(gotKeys, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Expected technical keys %v, got %v", wantKeys, gotKeys)
	}
}

func TestRun_FailStatus(t *testing.T) {
	ts := newTestServer(t, Options{FailStatus: http.StatusServiceUnavailable})

	resp, err := http.Post(ts.URL+"/analyze/run", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

func TestRun_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/analyze/run")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestRun_DelayHonoursClientTimeout(t *testing.T) {
	ts := newTestServer(t, Options{Delay: time.Second})

	cfg := analysis.DefaultClientConfig()
	cfg.BaseURL = ts.URL
	cfg.Timeout = 50 * time.Millisecond
	client, err := analysis.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Run(context.Background())
	if !analysis.IsTimeoutError(err) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["message"] != RootMessage {
		t.Errorf("Expected root message, got %q", body["message"])
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/analyze/run", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard allow origin, got %q", got)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{FailStatus: 200}); err == nil {
		t.Error("Expected error for non-error fail status")
	}
	if _, err := New(Options{Delay: -time.Second}); err == nil {
		t.Error("Expected error for negative delay")
	}
}

func TestScenarioBody(t *testing.T) {
	for _, name := range []string{ScenarioNoTenders, ScenarioTechnicalFailed, ScenarioPricingFailed} {
		body, err := ScenarioBody(name)
		if err != nil {
			t.Fatalf("ScenarioBody(%q) error = %v", name, err)
		}
		payload, err := analysis.DecodePayload(body)
		if err != nil {
			t.Fatalf("DecodePayload error = %v", err)
		}
		result := analysis.Normalize(payload)
		if result.Status != name {
			t.Errorf("Expected status %q, got %q", name, result.Status)
		}
		if result.TechnicalCount != 0 || result.PricingCount != 0 {
			t.Errorf("Expected empty collections for %q", name)
		}
		if result.Message != analysis.DefaultMessage {
			t.Errorf("Expected default message, got %q", result.Message)
		}
	}

	if _, err := ScenarioBody("exploded"); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}

func TestLoadFixture_YAMLKeepsKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	content := `status: completed
technical:
  - zeta: 1
    alpha: two
    gaps: ~
pricing: []
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	body, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	want := `{"status":"completed","technical":[{"zeta":1,"alpha":"two","gaps":null}],"pricing":[]}`
	if string(body) != want {
		t.Errorf("Expected %s, got %s", want, body)
	}
}

func TestLoadFixture_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Error("Expected error for invalid JSON fixture")
	}
}

func TestServeListener_StopsOnCancel(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never became reachable: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
