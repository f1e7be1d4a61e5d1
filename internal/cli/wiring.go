package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/config"
	"github.com/yildizm/TenderScope/internal/formatter"
	"github.com/yildizm/TenderScope/internal/handoff"
	"github.com/yildizm/TenderScope/internal/logger"
	"github.com/yildizm/TenderScope/internal/render"
	"github.com/yildizm/TenderScope/internal/session"
	"github.com/yildizm/TenderScope/internal/ui"
)

// stdoutIsTerminal is swapped out by tests
var stdoutIsTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type verboseFlag struct{}

func (verboseFlag) IsVerbose() bool {
	return isVerbose()
}

// newLogger builds the process logger. While the TUI owns the terminal,
// entries go to log.file or nowhere.
func newLogger(cfg *config.Config, tui bool) (*logger.Logger, func(), error) {
	noop := func() {}

	var out io.Writer = os.Stderr
	closeOut := noop
	switch {
	case cfg.Log.File != "":
		path := filepath.Clean(cfg.Log.File)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		// #nosec G304 - log path comes from the operator's config
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeOut = func() { _ = f.Close() }
	case tui:
		return logger.Nop(), noop, nil
	}

	log, err := logger.NewWithOptions("tenderscope", verboseFlag{}, logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	if err != nil {
		closeOut()
		return nil, nil, err
	}

	return log, func() {
		_ = log.Sync()
		closeOut()
	}, nil
}

// newOrchestrator wires the HTTP client and handoff store from cfg
func newOrchestrator(cfg *config.Config, log *logger.Logger) (*session.Orchestrator, handoff.Store, error) {
	client, err := analysis.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, nil, err
	}

	store, err := handoff.Open(cfg.Handoff.Driver, cfg.HandoffDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open handoff store: %w", err)
	}

	return session.NewOrchestrator(client, store, log), store, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// useColor resolves output.color_mode against the terminal
func useColor(cfg *config.Config) bool {
	switch cfg.Output.ColorMode {
	case "never":
		return false
	case "always":
		return true
	default:
		return !ui.IsColorDisabled() && stdoutIsTerminal()
	}
}

func columnStrategy(cfg *config.Config) (render.ColumnStrategy, error) {
	return render.ParseColumnStrategy(cfg.Results.Columns)
}

// getFormatter returns the formatter for format, configured from cfg
func getFormatter(cfg *config.Config, format string) (formatter.Formatter, error) {
	columns, err := columnStrategy(cfg)
	if err != nil {
		return nil, err
	}
	return formatter.New(format, formatter.Options{
		Columns:        columns,
		MaxColumnWidth: cfg.Results.MaxColumnWidth,
		Color:          useColor(cfg),
		Emoji:          !isEmojiDisabled(),
	})
}
