// Command build-dataset merges the per-year score sheets into the ranked
// dataset the lookup service loads.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/gradecard/internal/adapters/repository"
	"github.com/okian/gradecard/internal/domain/ranking"
	"github.com/okian/gradecard/pkg/logger"
)

const outputPermission = 0o644

type options struct {
	yearOne string
	yearTwo string
	output  string
	format  string
	credits ranking.Credits
	top     int
	log     logger.Logger
}

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	if err := newCommand(logger.Named("build-dataset")).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(log logger.Logger) *cobra.Command {
	opts := options{credits: ranking.DefaultCredits(), log: log}

	cmd := &cobra.Command{
		Use:   "build-dataset",
		Short: "Build the ranked grade dataset from two score sheets",
		Long: `build-dataset reads the year-one sheet (headerless "id,score" rows) and the
year-two sheet (with a 学号/课程成绩 header), computes credit-weighted
averages, ranks the cohort and writes the JSON dataset.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.yearOne, "year-one", "year1.csv", "year-one score sheet (no header)")
	f.StringVar(&opts.yearTwo, "year-two", "year2.csv", "year-two score sheet (with header)")
	f.StringVarP(&opts.output, "output", "o", "data.json", "dataset file to write")
	f.StringVar(&opts.format, "format", string(repository.FormatStandard), "output key set: standard or legacy")
	f.Float64Var(&opts.credits.YearOne, "year-one-credits", ranking.DefaultYearOneCredits, "year-one credit total")
	f.Float64Var(&opts.credits.YearTwo, "year-two-credits", ranking.DefaultYearTwoCredits, "year-two credit total")
	f.IntVar(&opts.top, "top", 10, "number of leading records to print")
	return cmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	log := opts.log

	format, err := repository.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	yearOne, err := readSheet(opts.yearOne, ranking.ReadHeaderless)
	if err != nil {
		return err
	}
	yearTwo, err := readSheet(opts.yearTwo, ranking.ReadWithHeader)
	if err != nil {
		return err
	}
	log.Info(ctx, "sheets read",
		logger.Int("year_one_rows", len(yearOne)),
		logger.Int("year_two_rows", len(yearTwo)))

	records, err := ranking.Build(yearOne, yearTwo, opts.credits)
	if err != nil {
		return fmt.Errorf("build dataset: %w", err)
	}

	f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputPermission)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := repository.Encode(f, records, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	log.Info(ctx, "dataset written",
		logger.String("output", opts.output),
		logger.Int("records", len(records)))

	printSummary(out, ranking.Summarize(records, opts.top))
	return nil
}

func readSheet(path string, read func(io.Reader) ([]ranking.Score, error)) ([]ranking.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	scores, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scores, nil
}

func printSummary(w io.Writer, s ranking.Summary) {
	fmt.Fprintf(w, "students: %d (regular %d, transfer %d)\n", s.Count, s.Regular, s.Transfer)
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "weighted average: max %.2f  min %.2f  mean %.2f  median %.2f\n",
		s.Max, s.Min, s.Mean, s.Median)
	for _, r := range s.Top {
		fmt.Fprintf(w, "%4d  %s  %.2f  %s\n", r.Rank, r.ID, r.WeightedAverage, r.StudentType)
	}
}
