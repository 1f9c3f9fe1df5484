package smoketest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/gradecard/internal/adapters/repository"
	"github.com/okian/gradecard/internal/domain/presenter"
	"github.com/okian/gradecard/internal/domain/record"
	"github.com/okian/gradecard/pkg/logger"
)

// Run checks every record of the configured dataset against the service,
// then a malformed and an absent id. The returned error wraps
// ErrChecksFailed when any check failed; stats are returned either way.
func Run(ctx context.Context, cfg Config, log logger.Logger) (*Stats, error) {
	cfg = cfg.withDefaults()
	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}

	log.Info(ctx, "starting smoke run",
		logger.String("run_id", stats.RunID),
		logger.String("base_url", cfg.BaseURL),
		logger.String("dataset", cfg.Dataset),
		logger.Int("workers", cfg.Workers))

	c := &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		runID:   stats.RunID,
		lang:    cfg.Lang,
	}

	if err := c.healthy(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	store, err := repository.Load(ctx, repository.SourceFor(cfg.Dataset, c.http),
		repository.WithIDLength(cfg.IDLength),
		repository.WithLogger(log.Named("repository")))
	if err != nil {
		return stats, err
	}
	records := store.Ranked()
	stats.Records = len(records)
	if len(records) == 0 {
		return stats, ErrEmptyDataset
	}

	var (
		mu       sync.Mutex
		failures []Failure
		checked  int
	)
	report := func(f *Failure) {
		mu.Lock()
		defer mu.Unlock()
		checked++
		if f != nil {
			failures = append(failures, *f)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, rec := range records {
		g.Go(func() error {
			resp, err := c.lookup(gctx, rec.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				report(&Failure{ID: rec.ID, Reason: err.Error()})
				return nil
			}
			f := verifyRecord(rec, resp)
			if cfg.Verbose {
				log.Debug(gctx, "checked", logger.String("id", rec.ID), logger.Bool("ok", f == nil))
			}
			report(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	badID, badCode := malformedID(cfg.IDLength)
	for _, probe := range []struct {
		id     string
		status int
		code   presenter.Code
	}{
		{id: badID, status: http.StatusBadRequest, code: badCode},
		{id: absentID(store, cfg.IDLength), status: http.StatusNotFound, code: presenter.CodeNotFound},
	} {
		resp, err := c.lookup(ctx, probe.id)
		if err != nil {
			report(&Failure{ID: probe.id, Reason: err.Error()})
			continue
		}
		report(verifyRejection(probe.id, resp, probe.status, probe.code))
	}

	stats.Checked = checked
	stats.Failures = failures
	stats.Passed = checked - len(failures)
	stats.Duration = time.Since(stats.StartTime)

	log.Info(ctx, "smoke run finished",
		logger.String("run_id", stats.RunID),
		logger.Int("checked", stats.Checked),
		logger.Int("failed", len(stats.Failures)),
		logger.Duration("duration", stats.Duration))

	if !stats.OK() {
		return stats, fmt.Errorf("%w: %d of %d", ErrChecksFailed, len(stats.Failures), stats.Checked)
	}
	return stats, nil
}

// verifyRecord compares a card with its dataset record.
func verifyRecord(rec record.Record, resp response) *Failure {
	fail := func(format string, args ...any) *Failure {
		return &Failure{ID: rec.ID, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case resp.Status != http.StatusOK:
		return fail("status %d (%s)", resp.Status, resp.Error.Code)
	case resp.Card.StudentID != rec.ID:
		return fail("student_id %q", resp.Card.StudentID)
	case resp.Card.Rank != rec.Rank:
		return fail("rank %d, want %d", resp.Card.Rank, rec.Rank)
	case resp.Card.hasScore(presenter.KeyYearOne) != (rec.YearOneScore != nil):
		return fail("year-one item present=%t, want %t", resp.Card.hasScore(presenter.KeyYearOne), rec.YearOneScore != nil)
	}
	return nil
}

// verifyRejection checks that a bad id was refused with the expected code.
func verifyRejection(id string, resp response, status int, code presenter.Code) *Failure {
	if resp.Status != status || resp.Error.Code != string(code) {
		return &Failure{ID: id, Reason: fmt.Sprintf("got %d/%q, want %d/%q", resp.Status, resp.Error.Code, status, code)}
	}
	return nil
}

// malformedID returns an id the service must reject and the code it should
// answer with. A one-digit id has no shorter non-empty form, so a letter of
// the right length is used instead.
func malformedID(length int) (string, presenter.Code) {
	if length <= 1 {
		return "x", presenter.CodeBadFormat
	}
	return strings.Repeat("1", length-1), presenter.CodeTooShort
}

// absentID returns a well-formed id that the store does not hold, counting
// down from the largest id of the configured length.
func absentID(store repository.Store, length int) string {
	n, _ := strconv.ParseUint(strings.Repeat("9", min(length, 19)), 10, 64)
	for ; ; n-- {
		id := fmt.Sprintf("%0*d", length, n)
		if _, ok := store.Get(id); !ok {
			return id
		}
	}
}

// WriteSummary prints a human readable report.
func WriteSummary(w io.Writer, s *Stats) {
	fmt.Fprintf(w, "run %s: %d records, %d checks, %d passed, %d failed in %s\n",
		s.RunID, s.Records, s.Checked, s.Passed, len(s.Failures), s.Duration.Round(time.Millisecond))
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  FAIL %s: %s\n", f.ID, f.Reason)
	}
}
