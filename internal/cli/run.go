package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/TenderScope/internal/emoji"
	"github.com/yildizm/TenderScope/internal/session"
	"github.com/yildizm/TenderScope/internal/ui"
)

var runOutputFile string

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger the tender analysis and print the result",
		Long: `Trigger the analysis on the backend without the terminal UI.

On success the normalized result is written to the handoff slot, so a
following "tenderscope results --source handoff" reads it without a second
call, and the report is printed in the selected output format. On failure
nothing is handed off and the command exits non-zero.

Examples:
  tenderscope run
  tenderscope run -o json --output-file result.json`,
		Args: cobra.NoArgs,
		RunE: runTrigger,
	}

	cmd.Flags().StringVar(&runOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runTrigger(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	ctx, cancel := signalContext()
	defer cancel()

	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	out, err := getFormatter(cfg, getOutputFormat())
	if err != nil {
		return err
	}

	orch, store, err := newOrchestrator(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := orch.Trigger(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", emoji.GetEmoji("error"), session.FailureTitle, session.FailureDescription)
		return fmt.Errorf("analysis failed: %w", err)
	}

	data, err := out.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), data, runOutputFile)
}

// shouldUseTUIMode reports whether the bare command should open the TUI
func shouldUseTUIMode() bool {
	return getOutputFormat() == "text" && !isVerbose() && stdoutIsTerminal()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !shouldUseTUIMode() {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Terminal UI disabled, running headless...\n")
		}
		return runTrigger(cmd, args)
	}

	cfg := GetGlobalConfig()

	source, err := session.ParseSource(cfg.Results.Source)
	if err != nil {
		return err
	}
	columns, err := columnStrategy(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	orch, store, err := newOrchestrator(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return ui.Run(ctx, orch, ui.Options{
		Source:         source,
		Columns:        columns,
		MaxColumnWidth: cfg.Results.MaxColumnWidth,
	})
}
