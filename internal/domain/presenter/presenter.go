// Package presenter turns records and errors into display payloads. It has
// no knowledge of any rendering layer; the payloads are plain data.
package presenter

import (
	"strconv"

	"github.com/okian/gradecard/internal/domain/record"
)

// DefaultNoticeDismissMS is how long a transient notice stays visible.
const DefaultNoticeDismissMS = 3000

// Score item keys.
const (
	KeyWeightedAverage = "weighted_average"
	KeyYearOne         = "year_one"
	KeyYearTwo         = "year_two"
)

// ScoreItem is one score shown on the result card.
type ScoreItem struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
	Highlight bool    `json:"highlight,omitempty"`
}

// Payload is the result card for one student.
type Payload struct {
	StudentID        string      `json:"student_id"`
	StudentType      string      `json:"student_type"`
	StudentTypeLabel string      `json:"student_type_label"`
	Rank             int         `json:"rank"`
	CohortSize       int         `json:"cohort_size,omitempty"`
	RankLabel        string      `json:"rank_label"`
	RankDisplay      string      `json:"rank_display"`
	Scores           []ScoreItem `json:"scores"`
	Note             string      `json:"note,omitempty"`
	Locale           Locale      `json:"locale"`
}

// Option applies a configuration option to the Presenter.
type Option func(*Presenter)

// WithCohortSize sets the cohort size shown next to the rank. Zero hides it.
func WithCohortSize(n int) Option {
	return func(p *Presenter) {
		if n >= 0 {
			p.cohortSize = n
		}
	}
}

// WithDefaultLocale sets the locale used for unknown locales.
func WithDefaultLocale(l Locale) Option {
	return func(p *Presenter) {
		if _, ok := catalog[l]; ok {
			p.defaultLocale = l
		}
	}
}

// WithNoticeDismiss sets the auto-dismiss delay of non-fatal notices.
func WithNoticeDismiss(ms int) Option {
	return func(p *Presenter) {
		if ms > 0 {
			p.dismissMS = ms
		}
	}
}

// Presenter formats records and errors. Its configuration is fixed at
// construction, so Render and Notice are pure.
type Presenter struct {
	cohortSize    int
	defaultLocale Locale
	dismissMS     int
}

// New creates a Presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		defaultLocale: English,
		dismissMS:     DefaultNoticeDismissMS,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultLocale returns the fallback locale.
func (p *Presenter) DefaultLocale() Locale { return p.defaultLocale }

func (p *Presenter) resolve(l Locale) Locale {
	if _, ok := catalog[l]; ok {
		return l
	}
	return p.defaultLocale
}

// Render builds the result card for rec. The year-one item appears only when
// the record has a year-one score; transfer students get a note.
func (p *Presenter) Render(rec record.Record, l Locale) Payload {
	l = p.resolve(l)
	lb := catalog[l]

	typeLabel := lb.regular
	if rec.StudentType == record.Transfer {
		typeLabel = lb.transfer
	}

	scores := make([]ScoreItem, 0, 3)
	scores = append(scores, scoreItem(KeyWeightedAverage, lb.weightedAverage, rec.WeightedAverage, true))
	if rec.YearOneScore != nil {
		scores = append(scores, scoreItem(KeyYearOne, lb.yearOne, *rec.YearOneScore, false))
	}
	scores = append(scores, scoreItem(KeyYearTwo, lb.yearTwo, rec.YearTwoScore, false))

	out := Payload{
		StudentID:        rec.ID,
		StudentType:      string(rec.StudentType),
		StudentTypeLabel: typeLabel,
		Rank:             rec.Rank,
		CohortSize:       p.cohortSize,
		RankLabel:        lb.rank,
		RankDisplay:      p.rankDisplay(rec.Rank),
		Scores:           scores,
		Locale:           l,
	}
	if rec.StudentType == record.Transfer {
		out.Note = lb.transferNote
	}
	return out
}

func (p *Presenter) rankDisplay(rank int) string {
	if p.cohortSize <= 0 {
		return strconv.Itoa(rank)
	}
	return strconv.Itoa(rank) + " / " + strconv.Itoa(p.cohortSize)
}

func scoreItem(key, label string, v float64, highlight bool) ScoreItem {
	return ScoreItem{
		Key:       key,
		Label:     label,
		Value:     v,
		Display:   FormatScore(v),
		Highlight: highlight,
	}
}

// FormatScore prints a score with the shortest exact decimal form.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
