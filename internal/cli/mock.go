package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/TenderScope/internal/config"
	"github.com/yildizm/TenderScope/internal/emoji"
	"github.com/yildizm/TenderScope/internal/mockserver"
)

var (
	mockAddr       string
	mockFixture    string
	mockScenario   string
	mockDelay      time.Duration
	mockFailStatus int
)

func newMockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve a local mock of the analysis backend",
		Long: `Start a development backend that answers the analysis endpoint with a
fixture. It performs no analysis; it exists to exercise the client.

The body comes from --fixture (JSON or YAML) or, without one, from a built-in
scenario: completed, no_tenders_found, technical_analysis_failed or
pricing_failed.

Examples:
  tenderscope mock
  tenderscope mock --addr :9000 --delay 2s
  tenderscope mock --fixture ./fixtures/large.yaml
  tenderscope mock --fail-status 502`,
		Args: cobra.NoArgs,
		RunE: runMock,
	}

	cmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVar(&mockFixture, "fixture", "", "response body file (JSON or YAML)")
	cmd.Flags().StringVar(&mockScenario, "scenario", "", "built-in response scenario")
	cmd.Flags().DurationVar(&mockDelay, "delay", 0, "delay before answering the analysis call")
	cmd.Flags().IntVar(&mockFailStatus, "fail-status", 0, "answer the analysis call with this HTTP status")

	return cmd
}

// mockOptions merges command flags over the mock config section
func mockOptions(cmd *cobra.Command, cfg *config.Config) (mockserver.Options, error) {
	mc := cfg.Mock
	if cmd.Flags().Changed("addr") {
		mc.Addr = mockAddr
	}
	if cmd.Flags().Changed("fixture") {
		mc.Fixture = mockFixture
	}
	if cmd.Flags().Changed("scenario") {
		mc.Scenario = mockScenario
	}
	if cmd.Flags().Changed("delay") {
		mc.Delay = mockDelay
	}
	if cmd.Flags().Changed("fail-status") {
		mc.FailStatus = mockFailStatus
	}

	var (
		body []byte
		err  error
	)
	if mc.Fixture != "" {
		body, err = mockserver.LoadFixture(mc.Fixture)
	} else {
		body, err = mockserver.ScenarioBody(mc.Scenario)
	}
	if err != nil {
		return mockserver.Options{}, err
	}

	return mockserver.Options{
		Addr:       mc.Addr,
		RunPath:    cfg.Backend.RunPath,
		HealthPath: cfg.Backend.HealthPath,
		Body:       body,
		Delay:      mc.Delay,
		FailStatus: mc.FailStatus,
	}, nil
}

func runMock(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	opts, err := mockOptions(cmd, cfg)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()
	opts.Logger = log

	server, err := mockserver.New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "%s Mock backend on %s (POST %s, Ctrl+C to stop)\n",
		emoji.GetEmoji("plug"), opts.Addr, opts.RunPath)
	return server.Serve(ctx)
}
