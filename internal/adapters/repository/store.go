// Package repository loads the student dataset into an immutable in-memory
// store.
package repository

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/record"
	"github.com/okian/gradecard/pkg/logger"
)

// Store provides read access to the loaded records.
type Store interface {
	// Get returns the record for id.
	Get(id string) (record.Record, bool)
	// Count returns the number of records.
	Count() int
	// CohortSize returns the upper bound for ranks.
	CohortSize() int
	// IDs returns every id in ascending order.
	IDs() []string
	// Ranked returns every record ordered by rank.
	Ranked() []record.Record
}

// MemoryStore is populated once by Load and never mutated afterwards, so
// reads need no locking.
type MemoryStore struct {
	records    map[string]record.Record
	ids        []string
	ranked     []record.Record
	cohortSize int
}

var _ Store = (*MemoryStore)(nil)

// Load reads the whole document from src and builds a store. Any invalid
// record fails the load; there is no partial population.
func Load(ctx context.Context, src Source, opts ...Option) (*MemoryStore, error) {
	o := loadOptions{idLength: lookup.DefaultIDLength, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	fail := func(err error) (*MemoryStore, error) {
		o.logger.Error(ctx, "dataset load failed",
			logger.String("source", src.String()), logger.Error(err))
		return nil, &LoadError{Source: src.String(), Err: err}
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return fail(err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return fail(err)
	}

	var doc map[string]wireRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}

	cohort := o.cohortSize
	if cohort == 0 {
		cohort = len(doc)
	}

	keys := o.keyChecker()
	s := &MemoryStore{
		records:    make(map[string]record.Record, len(doc)),
		ids:        make([]string, 0, len(doc)),
		cohortSize: cohort,
	}
	for key, w := range doc {
		rec, err := w.toRecord(key)
		if err != nil {
			return fail(err)
		}
		if err := rec.Validate(); err != nil {
			return fail(err)
		}
		if rec.Rank > cohort {
			return fail(fmt.Errorf("%w: %s: rank %d > %d", ErrRankOutOfRange, key, rec.Rank, cohort))
		}
		if id, err := keys.Validate(key); err != nil || id != key {
			return fail(fmt.Errorf("%w: %q", ErrInvalidID, key))
		}
		s.records[key] = rec
		s.ids = append(s.ids, key)
	}
	sort.Strings(s.ids)

	s.ranked = make([]record.Record, 0, len(s.ids))
	for _, id := range s.ids {
		s.ranked = append(s.ranked, s.records[id])
	}
	sort.SliceStable(s.ranked, func(i, j int) bool {
		return s.ranked[i].Rank < s.ranked[j].Rank
	})

	o.logger.Info(ctx, "dataset loaded",
		logger.String("source", src.String()),
		logger.Int("records", len(s.records)),
		logger.Int("cohort_size", cohort),
		logger.Duration("took", time.Since(start)),
	)
	return s, nil
}

// Get returns a copy of the record; the year-one score is not shared with
// the store.
func (s *MemoryStore) Get(id string) (record.Record, bool) {
	r, ok := s.records[id]
	return detach(r), ok
}

func (s *MemoryStore) Count() int { return len(s.records) }

func (s *MemoryStore) CohortSize() int { return s.cohortSize }

func (s *MemoryStore) IDs() []string { return append([]string(nil), s.ids...) }

func (s *MemoryStore) Ranked() []record.Record {
	out := make([]record.Record, len(s.ranked))
	for i, r := range s.ranked {
		out[i] = detach(r)
	}
	return out
}

func detach(r record.Record) record.Record {
	if r.YearOneScore != nil {
		r.YearOneScore = record.Score(*r.YearOneScore)
	}
	return r
}
