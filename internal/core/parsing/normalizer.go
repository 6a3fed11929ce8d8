package parsing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

const rowDateLayout = "02-Jan-2006"

// Normalize converts a matched row into a typed inspection record. It fails
// with a *domain.FormatError when the date is not a real calendar date or a
// number does not fit an int.
func Normalize(row MatchedRow) (domain.InspectionRecord, error) {
	date, err := ParseRowDate(row.Date)
	if err != nil {
		return domain.InspectionRecord{}, &domain.FormatError{Permit: row.Permit, Field: "date", Token: row.Date, Err: err}
	}

	category, ok := domain.ParseCategory(row.Category)
	if !ok {
		return domain.InspectionRecord{}, &domain.FormatError{Permit: row.Permit, Field: "category", Token: row.Category}
	}

	score, err := strconv.Atoi(row.Score)
	if err != nil {
		return domain.InspectionRecord{}, &domain.FormatError{Permit: row.Permit, Field: "score", Token: row.Score, Err: err}
	}

	violations, err := ParseViolations(row.Violations)
	if err != nil {
		var numErr *strconv.NumError
		token := row.Violations
		if errors.As(err, &numErr) {
			token = numErr.Num
		}
		return domain.InspectionRecord{}, &domain.FormatError{Permit: row.Permit, Field: "violation", Token: token, Err: err}
	}

	return domain.InspectionRecord{
		Date:           date,
		InspectionType: strings.ToUpper(strings.TrimSpace(row.InspectionType)),
		Category:       category,
		Score:          score,
		Violations:     violations,
	}, nil
}

// ParseRowDate parses DD-Mon-YYYY. Month names match case-insensitively and
// out-of-range days and year 0000 are rejected.
func ParseRowDate(s string) (domain.Date, error) {
	t, err := time.Parse(rowDateLayout, s)
	if err != nil {
		return domain.Date{}, err
	}
	if t.Year() < 1 {
		return domain.Date{}, fmt.Errorf("year %04d out of range", t.Year())
	}
	return domain.NewDate(t.Year(), t.Month(), t.Day()), nil
}

// ParseViolations returns every run of digits in s, in order. A run too large
// for an int fails the whole text.
func ParseViolations(s string) ([]int, error) {
	out := []int{}
	start := -1
	var firstErr error
	flush := func(end int) {
		if start < 0 {
			return
		}
		n, err := strconv.Atoi(s[start:end])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, n)
		start = -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
