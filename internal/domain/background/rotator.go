// Package background rotates the page background through a fixed list of
// images and remembers the last choice.
package background

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/gradecard/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// PreferenceKey is the key under which the chosen entry id is persisted.
const PreferenceKey = "preferredBackground"

// AssetProber checks that an entry's image can be loaded.
type AssetProber interface {
	Probe(ctx context.Context, e Entry) error
}

// PreferenceStore persists small string values across restarts.
type PreferenceStore interface {
	// Get returns the stored value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// ProbeResult is the outcome of preloading one entry.
type ProbeResult struct {
	Entry Entry
	Err   error
}

// Option applies a configuration option to the Rotator.
type Option func(*Rotator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Rotator) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRand sets the random source used by Random and Init.
func WithRand(rng *rand.Rand) Option {
	return func(r *Rotator) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithPreferenceKey overrides the persisted preference key.
func WithPreferenceKey(key string) Option {
	return func(r *Rotator) {
		if key != "" {
			r.prefKey = key
		}
	}
}

// Rotator is the Idle/Loading state machine over the background entries.
// A change request made while another is loading fails with ErrBusy; it is
// never queued.
type Rotator struct {
	mu      sync.Mutex
	entries []Entry
	current int // -1 until the first successful change
	state   State
	rng     *rand.Rand

	prober  AssetProber
	prefs   PreferenceStore
	prefKey string
	logger  logger.Logger
}

// New creates a Rotator. prefs may be nil, in which case choices are not
// persisted.
func New(entries []Entry, prober AssetProber, prefs PreferenceStore, opts ...Option) (*Rotator, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	r := &Rotator{
		entries: append([]Entry(nil), entries...),
		current: -1,
		state:   Idle,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // cosmetic choice
		prober:  prober,
		prefs:   prefs,
		prefKey: PreferenceKey,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Entries returns a copy of the rotation list.
func (r *Rotator) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Current returns the active entry, if any.
func (r *Rotator) Current() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current < 0 {
		return Entry{}, false
	}
	return r.entries[r.current], true
}

// State returns the current transition state.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Init restores the persisted entry when it is still in the list and
// otherwise picks one at random.
func (r *Rotator) Init(ctx context.Context) (Entry, error) {
	if r.prefs != nil {
		id, ok, err := r.prefs.Get(ctx, r.prefKey)
		if err != nil {
			r.logger.Warn(ctx, "reading background preference failed", logger.Error(err))
		}
		if ok {
			if idx := r.indexOf(id); idx >= 0 {
				return r.Select(ctx, idx)
			}
			r.logger.Info(ctx, "persisted background no longer configured", logger.String("id", id))
		}
	}
	return r.Random(ctx)
}

// Next advances to (current+1) mod n, or to the first entry when nothing is
// active yet.
func (r *Rotator) Next(ctx context.Context) (Entry, error) {
	return r.change(ctx, func(current, n int) (int, error) {
		if current < 0 {
			return 0, nil
		}
		return (current + 1) % n, nil
	})
}

// Random switches to a randomly chosen entry.
func (r *Rotator) Random(ctx context.Context) (Entry, error) {
	return r.change(ctx, func(_, n int) (int, error) {
		return r.rng.Intn(n), nil
	})
}

// Select switches to the entry at idx.
func (r *Rotator) Select(ctx context.Context, idx int) (Entry, error) {
	return r.change(ctx, func(_, n int) (int, error) {
		if idx < 0 || idx >= n {
			return 0, ErrUnknownEntry
		}
		return idx, nil
	})
}

// SelectID switches to the entry with the given id.
func (r *Rotator) SelectID(ctx context.Context, id string) (Entry, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return Entry{}, ErrUnknownEntry
	}
	return r.Select(ctx, idx)
}

// change runs one Idle -> Loading -> Idle transition. choose is called with
// the lock held.
func (r *Rotator) change(ctx context.Context, choose func(current, n int) (int, error)) (Entry, error) {
	r.mu.Lock()
	if r.state == Loading {
		r.mu.Unlock()
		return Entry{}, ErrBusy
	}
	idx, err := choose(r.current, len(r.entries))
	if err != nil {
		r.mu.Unlock()
		return Entry{}, err
	}
	r.state = Loading
	r.mu.Unlock()

	entry := r.entries[idx]
	if err := r.prober.Probe(ctx, entry); err != nil {
		r.mu.Lock()
		r.state = Idle
		r.mu.Unlock()
		r.logger.Warn(ctx, "background image failed to load",
			logger.String("id", entry.ID),
			logger.String("file", entry.File),
			logger.Error(err),
		)
		return Entry{}, &AssetError{Entry: entry, Err: err}
	}

	if r.prefs != nil {
		if err := r.prefs.Put(ctx, r.prefKey, entry.ID); err != nil {
			r.logger.Warn(ctx, "saving background preference failed", logger.Error(err))
		}
	}

	r.mu.Lock()
	r.current = idx
	r.state = Idle
	r.mu.Unlock()

	r.logger.Debug(ctx, "background changed", logger.String("id", entry.ID))
	return entry, nil
}

// Preload probes every entry concurrently and reports each outcome. It does
// not change the active entry.
func (r *Rotator) Preload(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, len(r.entries))
	var g errgroup.Group
	for i, e := range r.entries {
		g.Go(func() error {
			err := r.prober.Probe(ctx, e)
			results[i] = ProbeResult{Entry: e, Err: err}
			if err != nil {
				r.logger.Warn(ctx, "background preload failed",
					logger.String("id", e.ID), logger.String("file", e.File), logger.Error(err))
			} else {
				r.logger.Debug(ctx, "background preloaded", logger.String("id", e.ID))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Rotator) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
