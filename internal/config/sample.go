package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# TenderScope configuration
version: "1.0"

# Analysis backend
backend:
  base_url: "http://127.0.0.1:8000"
  run_path: "/analyze/run"
  health_path: "/"
  timeout: 60s            # bound on a single analysis call
  user_agent: "tenderscope"

# Side channel between the trigger and the results view
handoff:
  driver: file            # file | sqlite | memory
  dir: "~/.cache/tenderscope"

# Results view
results:
  source: refetch         # refetch | handoff | auto
  columns: first          # first: columns from the first record; union: every key seen
  max_column_width: 48    # wrap wider cells; 0 disables wrapping

output:
  default_format: text    # text | json | markdown | csv
  color_mode: auto        # auto | always | never
  theme: default          # default | high-contrast | minimal
  emoji: true
  verbose: false

log:
  level: info             # debug | info | warn | error
  format: console         # console | json
  file: ""                # empty writes to stderr; the TUI discards logs unless set

# Local stand-in backend (tenderscope mock)
mock:
  addr: ":8000"
  fixture: ""             # JSON or YAML response body; overrides scenario
  scenario: completed     # completed | no_tenders_found | technical_analysis_failed | pricing_failed
  delay: 0s
  fail_status: 0          # e.g. 503 to exercise failure handling
`
}

// MinimalSampleConfig returns a configuration file with only essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
backend:
  base_url: "http://127.0.0.1:8000"
  timeout: 60s
results:
  source: refetch
`
}
