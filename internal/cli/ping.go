package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/emoji"
	"github.com/yildizm/TenderScope/internal/session"
)

func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the analysis backend is reachable",
		Long: `Send a health check to the backend root and report whether it answered.

Examples:
  tenderscope ping
  TENDERSCOPE_BACKEND_BASE_URL=http://10.0.0.5:8000 tenderscope ping`,
		Args: cobra.NoArgs,
		RunE: runPing,
	}
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Backend.Timeout)
	defer cancelTimeout()

	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := analysis.NewClient(cfg.ClientConfig())
	if err != nil {
		return err
	}

	start := time.Now()
	if err := session.NewOrchestrator(client, nil, log).Ping(ctx); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Backend unreachable at %s\n", emoji.GetEmoji("error"), cfg.Backend.BaseURL)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Backend reachable at %s (%s)\n",
		emoji.GetEmoji("success"), cfg.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
	return nil
}
