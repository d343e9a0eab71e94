package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

// ErrMissingColumn is returned when the visits CSV lacks a required header.
var ErrMissingColumn = errors.New("missing required column")

// Visit CSV header names.
const (
	ColYear     = "Year"
	ColMonth    = "Month"
	ColVisitors = "RecreationVisits"
	ColParkName = "ParkName"
	ColUnitCode = "UnitCode"
)

var requiredColumns = []string{ColYear, ColMonth, ColVisitors, ColParkName, ColUnitCode}

var (
	errNotInteger = errors.New("not an integer")
	errOutOfRange = errors.New("out of range")
	errEmpty      = errors.New("empty")
)

// RowError describes a CSV row that was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Err    error  `json:"-"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// VisitsResult is the outcome of parsing a visits CSV.
type VisitsResult struct {
	Records []domain.VisitRecord
	Skipped []RowError
}

// ParseVisitsCSV reads visit records, matching columns by header name.
// Rows with unparseable fields are skipped and reported; a missing header
// fails the whole parse.
func ParseVisitsCSV(r io.Reader) (VisitsResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return VisitsResult{}, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return VisitsResult{}, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return VisitsResult{}, err
	}

	res := VisitsResult{Records: make([]domain.VisitRecord, 0, 1024)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, RowError{Line: perr.Line, Err: perr.Err})
				continue
			}
			return VisitsResult{}, fmt.Errorf("read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		rec, rowErr := parseRow(row, idx, line)
		if rowErr != nil {
			res.Skipped = append(res.Skipped, *rowErr)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int, line int) (domain.VisitRecord, *RowError) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	year, err := parseInt(field(ColYear), 1, 9999)
	if err != nil {
		return domain.VisitRecord{}, &RowError{Line: line, Column: ColYear, Value: field(ColYear), Err: err}
	}
	month, err := parseInt(field(ColMonth), 1, 12)
	if err != nil {
		return domain.VisitRecord{}, &RowError{Line: line, Column: ColMonth, Value: field(ColMonth), Err: err}
	}
	// NPS exports sometimes carry thousands separators.
	visitors, err := parseInt(strings.ReplaceAll(field(ColVisitors), ",", ""), 0, -1)
	if err != nil {
		return domain.VisitRecord{}, &RowError{Line: line, Column: ColVisitors, Value: field(ColVisitors), Err: err}
	}
	code := field(ColUnitCode)
	if code == "" {
		return domain.VisitRecord{}, &RowError{Line: line, Column: ColUnitCode, Err: errEmpty}
	}

	return domain.VisitRecord{
		Year:     year,
		Month:    month,
		Visitors: visitors,
		ParkName: field(ColParkName),
		UnitCode: code,
	}, nil
}

// parseInt parses s and checks lo <= n and, when hi >= lo, n <= hi.
func parseInt(s string, lo, hi int) (int, error) {
	if s == "" {
		return 0, errEmpty
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errNotInteger
	}
	if n < lo || (hi >= lo && n > hi) {
		return 0, errOutOfRange
	}
	return n, nil
}
