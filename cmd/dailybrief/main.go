package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DailyBrief/internal/app"
	"DailyBrief/internal/config"
	"DailyBrief/internal/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "dailybrief",
		Short:         "Daily brief ingestion pipeline",
		Long:          "Turns daily news, tech and sports feeds into a structured, archived daily issue.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		ingestCmd(),
		workerCmd(),
		rotateCmd(),
		serveCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp loads configuration, wires the application and closes it after fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}()

	return fn(ctx, application)
}

func ingestCmd() *cobra.Command {
	var printJSON bool

	cmd := &cobra.Command{
		Use:   "ingest [date]",
		Short: "Ingest one day (YYYY-MM-DD, default today) from the configured feeds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			return withApp(cmd, func(ctx context.Context, a *app.Application) error {
				issue, err := a.Ingest(ctx, date)
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				if printJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(issue)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d items)\n", issue.Date, issue.Status, issue.Sections.ItemCount())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&printJSON, "json", false, "Print the ingested issue as JSON")
	return cmd
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run scheduled ingestion on the configured cron expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.Application) error {
				return a.RunWorker(ctx)
			})
		},
	}
}

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Move issues past the retention window into the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.Application) error {
				moved, err := a.Rotate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d issue(s)\n", moved)
				return nil
			})
		},
	}
}

func serveCmd() *cobra.Command {
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, /healthz and /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.Application) error {
				return a.Serve(ctx, withWorker)
			})
		},
	}
	cmd.Flags().BoolVar(&withWorker, "worker", false, "Also run the ingestion scheduler in this process")
	return cmd
}
