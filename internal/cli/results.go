package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yildizm/TenderScope/internal/config"
	"github.com/yildizm/TenderScope/internal/formatter"
	"github.com/yildizm/TenderScope/internal/handoff"
	"github.com/yildizm/TenderScope/internal/logger"
	"github.com/yildizm/TenderScope/internal/session"
)

var (
	resultsSource     string
	resultsColumns    string
	resultsOutputFile string
	resultsWatch      bool
)

func newResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Load and print the analysis results",
		Long: `Load the analysis results and print them as tables.

The source decides where the data comes from:
  refetch  issue a fresh analysis call (default)
  handoff  read the result left by the last successful run
  auto     use the handed-off result when present, otherwise re-fetch

A failed load is printed as an error result; it is not a command failure.

With --watch the command keeps running and prints the handed-off result every
time a new run writes it. Watching needs the file handoff driver.

Examples:
  tenderscope results
  tenderscope results --source handoff -o markdown
  tenderscope results --columns union -o csv --output-file results.csv
  tenderscope results --watch`,
		Args: cobra.NoArgs,
		RunE: runResults,
	}

	cmd.Flags().StringVar(&resultsSource, "source", "", "result source (refetch, handoff, auto)")
	cmd.Flags().StringVar(&resultsColumns, "columns", "", "column strategy (first, union)")
	cmd.Flags().StringVar(&resultsOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVarP(&resultsWatch, "watch", "w", false, "print every newly handed-off result")

	return cmd
}

func runResults(cmd *cobra.Command, args []string) error {
	cfg := *GetGlobalConfig()
	if cmd.Flags().Changed("source") {
		cfg.Results.Source = resultsSource
	}
	if cmd.Flags().Changed("columns") {
		cfg.Results.Columns = resultsColumns
	}

	source, err := session.ParseSource(cfg.Results.Source)
	if err != nil {
		return err
	}

	out, err := getFormatter(&cfg, getOutputFormat())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log, closeLog, err := newLogger(&cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	orch, store, err := newOrchestrator(&cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if resultsWatch {
		return watchResults(ctx, cmd.OutOrStdout(), &cfg, store, out, log)
	}

	data, err := out.Format(orch.Load(ctx, source))
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), data, resultsOutputFile)
}

// watchResults prints the slot now, if filled, and again on every rewrite.
// The slot is peeked, never consumed, so a concurrent reader still gets it.
func watchResults(ctx context.Context, w io.Writer, cfg *config.Config, store handoff.Store, out formatter.Formatter, log *logger.Logger) error {
	fs, ok := store.(*handoff.FileStore)
	if !ok {
		return fmt.Errorf("--watch requires the file handoff driver, got %q", cfg.Handoff.Driver)
	}

	show := func() {
		env, err := handoff.Peek(ctx, fs)
		if err != nil {
			if !errors.Is(err, handoff.ErrNotFound) {
				log.WarnWithFields("failed to read handoff slot", []logger.Field{logger.Error(err)})
			}
			return
		}
		data, err := out.Format(env.Result)
		if err != nil {
			log.WarnWithFields("failed to format result", []logger.Field{logger.Error(err)})
			return
		}
		if err := writeOutput(w, data, resultsOutputFile); err != nil {
			log.WarnWithFields("failed to write result", []logger.Field{logger.Error(err)})
		}
	}

	if isVerbose() {
		fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", fs.Path(handoff.SlotAnalysisResults))
	}

	show()
	return fs.Watch(ctx, handoff.SlotAnalysisResults, show)
}
