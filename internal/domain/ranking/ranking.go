// Package ranking computes credit-weighted averages and class ranks from
// per-year score sheets. It is the offline step that produces the dataset
// the lookup service serves.
package ranking

import (
	"math"
	"sort"

	"github.com/okian/gradecard/internal/domain/record"
)

// Default credit totals for the two years.
const (
	DefaultYearOneCredits = 51.8
	DefaultYearTwoCredits = 48.3
)

// Credits are the credit totals used as weights.
type Credits struct {
	YearOne float64
	YearTwo float64
}

// DefaultCredits returns the stock credit weights.
func DefaultCredits() Credits {
	return Credits{YearOne: DefaultYearOneCredits, YearTwo: DefaultYearTwoCredits}
}

// Total returns the combined credits.
func (c Credits) Total() float64 { return c.YearOne + c.YearTwo }

// Validate rejects non-positive weights.
func (c Credits) Validate() error {
	if c.YearOne <= 0 || c.YearTwo <= 0 {
		return ErrInvalidCredits
	}
	return nil
}

// Score is one row of a score sheet.
type Score struct {
	ID    string
	Value float64
}

// Build merges the sheets and ranks the cohort. The year-two sheet decides
// membership: ids only present in year one are dropped, ids missing from
// year one are transfer students whose weighted average is their year-two
// score. Ranks follow the weighted average descending, ties by id.
func Build(yearOne, yearTwo []Score, credits Credits) ([]record.Record, error) {
	if err := credits.Validate(); err != nil {
		return nil, err
	}

	first := make(map[string]float64, len(yearOne))
	for _, s := range yearOne {
		first[s.ID] = s.Value
	}

	seen := make(map[string]struct{}, len(yearTwo))
	out := make([]record.Record, 0, len(yearTwo))
	for _, s := range yearTwo {
		if _, dup := seen[s.ID]; dup {
			return nil, &DuplicateError{ID: s.ID}
		}
		seen[s.ID] = struct{}{}

		rec := record.Record{ID: s.ID, YearTwoScore: s.Value}
		if y1, ok := first[s.ID]; ok {
			rec.StudentType = record.Regular
			rec.YearOneScore = record.Score(y1)
			rec.WeightedAverage = Round2((y1*credits.YearOne + s.Value*credits.YearTwo) / credits.Total())
		} else {
			rec.StudentType = record.Transfer
			rec.WeightedAverage = Round2(s.Value)
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeightedAverage != out[j].WeightedAverage {
			return out[i].WeightedAverage > out[j].WeightedAverage
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary describes a ranked cohort.
type Summary struct {
	Count    int
	Regular  int
	Transfer int
	Max      float64
	Min      float64
	Mean     float64
	Median   float64
	Top      []record.Record
}

// Summarize computes statistics over ranked records (as returned by Build)
// and keeps the first topN.
func Summarize(ranked []record.Record, topN int) Summary {
	s := Summary{Count: len(ranked)}
	if len(ranked) == 0 {
		return s
	}
	values := make([]float64, 0, len(ranked))
	var sum float64
	for _, r := range ranked {
		if r.StudentType == record.Transfer {
			s.Transfer++
		} else {
			s.Regular++
		}
		values = append(values, r.WeightedAverage)
		sum += r.WeightedAverage
	}
	sort.Float64s(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Mean = sum / float64(len(values))
	mid := len(values) / 2
	if len(values)%2 == 1 {
		s.Median = values[mid]
	} else {
		s.Median = (values[mid-1] + values[mid]) / 2
	}
	if topN > len(ranked) {
		topN = len(ranked)
	}
	if topN > 0 {
		s.Top = append([]record.Record(nil), ranked[:topN]...)
	}
	return s
}
