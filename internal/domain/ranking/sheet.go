package ranking

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header names recognized in year-two sheets.
var (
	idHeaders    = []string{"学号", "id", "student_id"}
	scoreHeaders = []string{"课程成绩", "score", "大二成绩"}
)

const utf8BOM = "\ufeff"

// ReadHeaderless reads "id,score" rows without a header, as the year-one
// sheet is exported. Rows with an empty field are skipped.
func ReadHeaderless(r io.Reader) ([]Score, error) {
	cr := newReader(r)
	var out []Score
	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSheet, line, err)
		}
		if len(row) < 2 || blank(row[0]) || blank(row[1]) {
			continue
		}
		s, err := parseRow(strings.TrimPrefix(row[0], utf8BOM), row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSheet, line, err)
		}
		out = append(out, s)
	}
}

// ReadWithHeader reads a sheet whose first row names the columns. The id
// column is 学号 (or id) and the score column 课程成绩 (or score).
func ReadWithHeader(r io.Reader) ([]Score, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrSheet, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	idCol, scoreCol := column(header, idHeaders), column(header, scoreHeaders)
	if idCol < 0 || scoreCol < 0 {
		return nil, fmt.Errorf("%w: header %q lacks id or score column", ErrSheet, header)
	}

	var out []Score
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSheet, line, err)
		}
		if idCol >= len(row) || scoreCol >= len(row) || blank(row[idCol]) || blank(row[scoreCol]) {
			continue
		}
		s, err := parseRow(row[idCol], row[scoreCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSheet, line, err)
		}
		out = append(out, s)
	}
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func parseRow(id, score string) (Score, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(score), 64)
	if err != nil {
		return Score{}, fmt.Errorf("score %q: %w", score, err)
	}
	return Score{ID: strings.TrimSpace(id), Value: v}, nil
}

func column(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
