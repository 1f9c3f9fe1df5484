// Package service wires the record store, lookup, presenter and background
// rotator into the operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/okian/gradecard/internal/adapters/assets"
	"github.com/okian/gradecard/internal/adapters/preference"
	"github.com/okian/gradecard/internal/adapters/repository"
	"github.com/okian/gradecard/internal/domain/background"
	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/presenter"
	"github.com/okian/gradecard/internal/domain/ranking"
	"github.com/okian/gradecard/pkg/logger"
	"github.com/okian/gradecard/pkg/metrics"
)

// Service implements the API dependencies for the grade lookup page.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemoryStore
	finder    *lookup.Service
	presenter *presenter.Presenter
	rotator   *background.Rotator
	prefs     preference.Store
	prober    background.AssetProber

	// Configuration
	source         repository.Source
	datasetTimeout time.Duration
	idLength       int
	cohortSize     int
	lookupDelay    time.Duration
	entries        []background.Entry
	assetsDir      string
	prefDriver     preference.Driver
	prefDSN        string
	defaultLocale  presenter.Locale

	// State
	started  bool
	loadErr  error
	ownPrefs bool

	countsMu sync.Mutex
	counts   map[string]int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataset sets where the records are loaded from: a file path or an
// http(s) URL.
func WithDataset(location string) Option {
	return func(s *Service) {
		if location != "" {
			s.source = repository.SourceFor(location, &http.Client{})
		}
	}
}

// WithDatasetSource sets the dataset source directly.
func WithDatasetSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithDatasetTimeout bounds the startup load.
func WithDatasetTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.datasetTimeout = d
		}
	}
}

// WithIDLength sets the exact student id length.
func WithIDLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.idLength = n
		}
	}
}

// WithCohortSize sets the rank denominator. Zero hides it.
func WithCohortSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.cohortSize = n
		}
	}
}

// WithLookupDelay sets the simulated latency of each lookup.
func WithLookupDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.lookupDelay = d
		}
	}
}

// WithBackgrounds sets the background rotation list.
func WithBackgrounds(entries []background.Entry) Option {
	return func(s *Service) {
		if len(entries) > 0 {
			s.entries = entries
		}
	}
}

// WithAssetsDir sets the directory probed for background images.
func WithAssetsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.assetsDir = dir
		}
	}
}

// WithAssetProber replaces the directory prober.
func WithAssetProber(p background.AssetProber) Option {
	return func(s *Service) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithPreferenceDriver selects the preference store opened by Start.
func WithPreferenceDriver(driver preference.Driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.prefDriver = driver
			s.prefDSN = dsn
		}
	}
}

// WithPreferenceStore uses an already opened store. The caller keeps
// ownership and closes it.
func WithPreferenceStore(p preference.Store) Option {
	return func(s *Service) {
		if p != nil {
			s.prefs = p
		}
	}
}

// WithDefaultLocale sets the fallback locale for rendering.
func WithDefaultLocale(l presenter.Locale) Option {
	return func(s *Service) {
		if l != "" {
			s.defaultLocale = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:         repository.FileSource{Path: "data.json"},
		datasetTimeout: 10 * time.Second,
		idLength:       lookup.DefaultIDLength,
		lookupDelay:    300 * time.Millisecond,
		entries:        background.DefaultEntries(),
		assetsDir:      "./images",
		prefDriver:     preference.DriverMemory,
		defaultLocale:  presenter.English,
		counts:         make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and prepares the background rotator. A dataset
// failure does not stop the service; lookups report it instead.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting gradecard service...")

	s.presenter = presenter.New(
		presenter.WithCohortSize(s.cohortSize),
		presenter.WithDefaultLocale(s.defaultLocale),
	)
	s.loadDataset(ctx)

	if s.prefs == nil {
		prefs, err := preference.Open(ctx, s.prefDriver, s.prefDSN)
		if err != nil {
			s.logger.Warn(ctx, "preference store unavailable, choices will not persist",
				logger.String("driver", string(s.prefDriver)), logger.Error(err))
			prefs = preference.NewMemory()
		}
		s.prefs = prefs
		s.ownPrefs = true
	}
	if s.prober == nil {
		s.prober = assets.NewDirProber(s.assetsDir)
	}

	rotator, err := background.New(s.entries, s.prober, s.prefs,
		background.WithLogger(s.logger.Named("background")))
	if err != nil {
		return err
	}
	s.rotator = rotator

	available := 0
	for _, res := range rotator.Preload(ctx) {
		if res.Err == nil {
			available++
		}
	}
	metrics.UpdateBackgroundAssetsAvailable(available)

	if entry, err := rotator.Init(ctx); err != nil {
		s.logger.Warn(ctx, "no background applied", logger.Error(err))
	} else {
		s.logger.Info(ctx, "background applied", logger.String("id", entry.ID))
	}

	s.started = true
	s.logger.Info(ctx, "gradecard service started",
		logger.Bool("dataset_loaded", s.loadErr == nil),
		logger.Int("backgrounds_available", available),
		logger.Duration("lookup_delay", s.lookupDelay),
	)
	return nil
}

func (s *Service) loadDataset(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.datasetTimeout)
	defer cancel()

	start := time.Now()
	store, err := repository.Load(loadCtx, s.source,
		repository.WithCohortSize(s.cohortSize),
		repository.WithIDLength(s.idLength),
		repository.WithLogger(s.logger.Named("repository")),
	)
	if err != nil {
		s.loadErr = err
		s.store = &repository.MemoryStore{}
		metrics.RecordDatasetLoadFailure()
	} else {
		s.loadErr = nil
		s.store = store
		metrics.RecordDatasetLoad(store.Count(), float64(time.Since(start).Milliseconds()))
	}
	s.finder = lookup.New(s.store, lookup.WithIDLength(s.idLength))
}

// Stop releases the preference store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping gradecard service...")

	if s.ownPrefs && s.prefs != nil {
		if err := s.prefs.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing preference store failed", logger.Error(err))
		}
		s.prefs = nil
		s.ownPrefs = false
	}

	s.started = false
	s.logger.Info(context.Background(), "gradecard service stopped")
}

// LoadError returns the dataset failure, or nil when the dataset loaded.
func (s *Service) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Lookup validates raw, waits the simulated delay and renders the matching
// record. Invalid input is rejected before the delay.
func (s *Service) Lookup(ctx context.Context, raw string, l presenter.Locale) (presenter.Payload, error) {
	start := time.Now()

	s.mu.RLock()
	started, finder, pres, loadErr := s.started, s.finder, s.presenter, s.loadErr
	s.mu.RUnlock()
	if !started {
		return presenter.Payload{}, ErrNotStarted
	}

	id, err := finder.Validate(raw)
	if err != nil {
		if reason, ok := lookup.ReasonOf(err); ok {
			metrics.RecordValidationFailure(string(reason))
		}
		s.recordLookup(metrics.OutcomeInvalid, start)
		return presenter.Payload{}, err
	}

	if err := s.wait(ctx); err != nil {
		s.recordLookup(metrics.OutcomeCanceled, start)
		return presenter.Payload{}, err
	}

	if loadErr != nil {
		s.recordLookup(metrics.OutcomeUnavailable, start)
		return presenter.Payload{}, loadErr
	}

	rec, err := finder.Find(id)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			s.recordLookup(metrics.OutcomeNotFound, start)
		}
		return presenter.Payload{}, err
	}
	s.recordLookup(metrics.OutcomeFound, start)

	s.logger.Debug(ctx, "student found", logger.String("id", id), logger.Int("rank", rec.Rank))
	return pres.Render(rec, l), nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.lookupDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.lookupDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) recordLookup(outcome string, start time.Time) {
	metrics.RecordLookup(outcome, float64(time.Since(start).Milliseconds()))
	s.countsMu.Lock()
	s.counts[outcome]++
	s.countsMu.Unlock()
}

// Notice renders err for the user.
func (s *Service) Notice(err error, l presenter.Locale) presenter.Notice {
	s.mu.RLock()
	pres := s.presenter
	s.mu.RUnlock()
	if pres == nil {
		pres = presenter.New(presenter.WithDefaultLocale(s.defaultLocale))
	}
	return pres.Notice(err, l)
}

// Locale picks the response locale from an Accept-Language header.
func (s *Service) Locale(acceptLanguage string) presenter.Locale {
	return presenter.MatchLocale(acceptLanguage, s.defaultLocale)
}

// Backgrounds returns the rotation list.
func (s *Service) Backgrounds() []background.Entry {
	return append([]background.Entry(nil), s.entries...)
}

// CurrentBackground returns the active background and the rotator state.
func (s *Service) CurrentBackground() (background.Entry, bool, background.State) {
	r := s.getRotator()
	if r == nil {
		return background.Entry{}, false, background.Idle
	}
	e, ok := r.Current()
	return e, ok, r.State()
}

// NextBackground advances to the following background.
func (s *Service) NextBackground(ctx context.Context) (background.Entry, error) {
	return s.changeBackground(ctx, func(r *background.Rotator) (background.Entry, error) {
		return r.Next(ctx)
	})
}

// RandomBackground switches to a random background.
func (s *Service) RandomBackground(ctx context.Context) (background.Entry, error) {
	return s.changeBackground(ctx, func(r *background.Rotator) (background.Entry, error) {
		return r.Random(ctx)
	})
}

// SelectBackground switches to the background with the given id.
func (s *Service) SelectBackground(ctx context.Context, id string) (background.Entry, error) {
	return s.changeBackground(ctx, func(r *background.Rotator) (background.Entry, error) {
		return r.SelectID(ctx, id)
	})
}

func (s *Service) changeBackground(ctx context.Context, change func(*background.Rotator) (background.Entry, error)) (background.Entry, error) {
	r := s.getRotator()
	if r == nil {
		return background.Entry{}, ErrNotStarted
	}
	e, err := change(r)
	switch {
	case err == nil:
		metrics.RecordBackgroundChange(metrics.ChangeOK)
	case errors.Is(err, background.ErrBusy):
		metrics.RecordBackgroundChange(metrics.ChangeBusy)
	case errors.Is(err, background.ErrAssetUnavailable):
		metrics.RecordBackgroundChange(metrics.ChangeAssetError)
	default:
		metrics.RecordBackgroundChange(metrics.ChangeError)
	}
	if err != nil {
		s.logger.Debug(ctx, "background change rejected", logger.Error(err))
	}
	return e, err
}

func (s *Service) getRotator() *background.Rotator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil
	}
	return s.rotator
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"dataset":         s.source.String(),
		"id_length":       s.idLength,
		"cohort_size":     s.cohortSize,
		"lookup_delay_ms": s.lookupDelay.Milliseconds(),
	}

	s.countsMu.Lock()
	lookups := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		lookups[k] = v
	}
	s.countsMu.Unlock()
	stats["lookups"] = lookups

	if !s.started {
		return stats
	}

	stats["dataset_loaded"] = s.loadErr == nil
	if s.loadErr != nil {
		stats["dataset_error"] = s.loadErr.Error()
	}
	stats["records"] = s.store.Count()

	sum := ranking.Summarize(s.store.Ranked(), 0)
	stats["summary"] = map[string]interface{}{
		"count":    sum.Count,
		"regular":  sum.Regular,
		"transfer": sum.Transfer,
		"max":      sum.Max,
		"min":      sum.Min,
		"mean":     ranking.Round2(sum.Mean),
		"median":   sum.Median,
	}

	bg := map[string]interface{}{
		"entries": len(s.entries),
		"state":   s.rotator.State().String(),
	}
	if e, ok := s.rotator.Current(); ok {
		bg["current"] = e.ID
	}
	stats["background"] = bg

	return stats
}
