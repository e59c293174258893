package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lingua/cmsinit/internal/orchestrator"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Ensure the Translation content type exists and is published, then exit",
	Long: `Bootstrap checks the configured space for the Translation content type.
When it is missing it is created and published, and, if notify.nats_url is
set, an event is published on notify.subject.

The command prints a JSON result to stdout and exits 0 on success or
non-zero on failure.`,
	RunE: runBootstrap,
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Bootstrap.Timeout)
	defer cancel()
	defer app.shutdownTelemetry()

	slog.InfoContext(ctx, "starting bootstrap",
		"space_id", cfg.Management.SpaceID, "environment", cfg.Management.Environment)

	result, err := app.orchestrator.RunBootstrap(ctx)
	if err != nil {
		printResult("error", err.Error())
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	printBootstrapResult(result)
	if result.Status == orchestrator.StatusError {
		return fmt.Errorf("bootstrap failed: %w", result.Err())
	}

	slog.InfoContext(ctx, "bootstrap completed successfully", "outcome", result.Outcome)
	return nil
}

func printBootstrapResult(result *orchestrator.BootstrapResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stdout, `{"status":%q}`+"\n", result.Status)
	}
}

func printResult(status, errMsg string) {
	result := map[string]string{"status": status}
	if errMsg != "" {
		result["error"] = errMsg
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stdout, `{"status":%q}`+"\n", status)
	}
}
