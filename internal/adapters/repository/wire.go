package repository

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/okian/gradecard/internal/domain/record"
)

// Format selects the field naming used by Encode.
type Format string

const (
	// FormatStandard uses English snake_case keys.
	FormatStandard Format = "standard"
	// FormatLegacy uses the keys of the first published data.json, which the
	// static page reads directly.
	FormatLegacy Format = "legacy"
)

// ParseFormat maps a name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatStandard, FormatLegacy:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// wireRecord accepts both key sets. A standard key wins when both appear.
type wireRecord struct {
	ID              *string  `json:"id"`
	Rank            *int     `json:"rank"`
	WeightedAverage *float64 `json:"weighted_average"`
	YearOneScore    *float64 `json:"year_one_score"`
	YearTwoScore    *float64 `json:"year_two_score"`
	StudentType     *string  `json:"student_type"`

	LegacyID              *string  `json:"学号"`
	LegacyRank            *int     `json:"排名"`
	LegacyWeightedAverage *float64 `json:"加权平均分"`
	LegacyYearOneScore    *float64 `json:"大一成绩"`
	LegacyYearTwoScore    *float64 `json:"大二成绩"`
	LegacyStudentType     *string  `json:"学生类型"`
}

func firstOf[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func (w wireRecord) toRecord(key string) (record.Record, error) {
	id := key
	if v := firstOf(w.ID, w.LegacyID); v != nil {
		if *v != key {
			return record.Record{}, fmt.Errorf("%w: key %q, id %q", ErrIDMismatch, key, *v)
		}
	}

	rank := firstOf(w.Rank, w.LegacyRank)
	if rank == nil {
		return record.Record{}, fmt.Errorf("%w: %s: rank", ErrMissingField, key)
	}
	avg := firstOf(w.WeightedAverage, w.LegacyWeightedAverage)
	if avg == nil {
		return record.Record{}, fmt.Errorf("%w: %s: weighted average", ErrMissingField, key)
	}
	yearTwo := firstOf(w.YearTwoScore, w.LegacyYearTwoScore)
	if yearTwo == nil {
		return record.Record{}, fmt.Errorf("%w: %s: year-two score", ErrMissingField, key)
	}
	rawType := firstOf(w.StudentType, w.LegacyStudentType)
	if rawType == nil {
		return record.Record{}, fmt.Errorf("%w: %s: student type", ErrMissingField, key)
	}
	st, err := record.ParseStudentType(*rawType)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s: %w", key, err)
	}

	rec := record.Record{
		ID:              id,
		Rank:            *rank,
		WeightedAverage: *avg,
		YearTwoScore:    *yearTwo,
		StudentType:     st,
	}
	if y1 := firstOf(w.YearOneScore, w.LegacyYearOneScore); y1 != nil {
		rec.YearOneScore = record.Score(*y1)
	}
	return rec, nil
}

type standardRecord struct {
	ID              string   `json:"id"`
	Rank            int      `json:"rank"`
	WeightedAverage float64  `json:"weighted_average"`
	YearOneScore    *float64 `json:"year_one_score"`
	YearTwoScore    float64  `json:"year_two_score"`
	StudentType     string   `json:"student_type"`
}

type legacyRecord struct {
	Rank            int      `json:"排名"`
	ID              string   `json:"学号"`
	YearOneScore    *float64 `json:"大一成绩"`
	YearTwoScore    float64  `json:"大二成绩"`
	WeightedAverage float64  `json:"加权平均分"`
	StudentType     string   `json:"学生类型"`
}

func legacyType(t record.StudentType) string {
	if t == record.Transfer {
		return "转入"
	}
	return "完整"
}

// Encode writes records as an indented JSON object keyed by id, readable
// by Load.
func Encode(w io.Writer, records []record.Record, format Format) error {
	var doc any
	switch format {
	case FormatStandard, "":
		m := make(map[string]standardRecord, len(records))
		for _, r := range records {
			m[r.ID] = standardRecord{
				ID:              r.ID,
				Rank:            r.Rank,
				WeightedAverage: r.WeightedAverage,
				YearOneScore:    r.YearOneScore,
				YearTwoScore:    r.YearTwoScore,
				StudentType:     string(r.StudentType),
			}
		}
		doc = m
	case FormatLegacy:
		m := make(map[string]legacyRecord, len(records))
		for _, r := range records {
			m[r.ID] = legacyRecord{
				Rank:            r.Rank,
				ID:              r.ID,
				YearOneScore:    r.YearOneScore,
				YearTwoScore:    r.YearTwoScore,
				WeightedAverage: r.WeightedAverage,
				StudentType:     legacyType(r.StudentType),
			}
		}
		doc = m
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
