// Command smoke checks a running gradecard service against its dataset.
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/okian/gradecard/internal/smoketest"
	"github.com/okian/gradecard/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	if err := newCommand(logger.Named("smoke")).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(log logger.Logger) *cobra.Command {
	cfg := smoketest.DefaultConfig()
	var asJSON bool

	cmd := &cobra.Command{
		Use:          "smoke",
		Short:        "Look up every student of a dataset and verify the returned cards",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			stats, err := smoketest.Run(cmd.Context(), cfg, log)
			if stats != nil && stats.Checked > 0 {
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(stats); encErr != nil {
						return encErr
					}
				} else {
					smoketest.WriteSummary(cmd.OutOrStdout(), stats)
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "dataset file or URL to check against")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent lookups")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.IntVar(&cfg.IDLength, "id-length", cfg.IDLength, "identifier length the service enforces")
	f.StringVar(&cfg.Lang, "lang", "", "locale to request (en or zh)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every checked id")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
