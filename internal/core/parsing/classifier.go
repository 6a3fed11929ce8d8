package parsing

import (
	"strings"
	"unicode"
)

// Lines containing any of these are page furniture, never rows.
var headerMarkers = [...]string{
	"Permit #",
	"Report Executed On",
}

// MatchedRow holds the raw fields of a line that satisfied the row grammar.
// Every field except Violations is non-empty.
type MatchedRow struct {
	Permit         string
	Prefix         string
	Date           string
	InspectionType string
	Category       string
	Score          string
	Violations     string
}

type token struct {
	text       string
	start, end int
}

func tokenize(line string) []token {
	var tokens []token
	start := -1
	for i, r := range line {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{text: line[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: line[start:], start: start, end: len(line)})
	}
	return tokens
}

// ClassifyLine reports whether line is an inspection row and returns its
// fields. The line grammar is
//
//	PERMIT PREFIX... DATE TYPE... CATEGORY SCORE [TRAILING...]
//
// PREFIX is matched lazily: the first DATE after it for which the rest of
// the grammar holds wins, so names with embedded dates or digits still split
// at the right column.
func ClassifyLine(line string) (MatchedRow, bool) {
	line = strings.TrimSpace(line)
	if line == "" || isHeader(line) {
		return MatchedRow{}, false
	}

	tokens := tokenize(line)
	// permit, prefix, date, type, category, score
	if len(tokens) < 6 || !isPermit(tokens[0].text) {
		return MatchedRow{}, false
	}

	for d := 2; d+3 < len(tokens); d++ {
		if !isDateToken(tokens[d].text) {
			continue
		}
		row, ok := matchTail(line, tokens, d)
		if !ok {
			continue
		}
		row.Permit = tokens[0].text
		row.Prefix = line[tokens[1].start:tokens[d-1].end]
		return row, true
	}
	return MatchedRow{}, false
}

// matchTail matches TYPE... CATEGORY SCORE [TRAILING] after the date token at
// index d, taking the shortest inspection-type span that works.
func matchTail(line string, tokens []token, d int) (MatchedRow, bool) {
	typeStart := d + 1
	for c := typeStart + 1; c+1 < len(tokens); c++ {
		if !isTypeSpan(line[tokens[typeStart].start:tokens[c-1].end]) {
			// the type span only grows from here
			return MatchedRow{}, false
		}
		if !isCategory(tokens[c].text) || !isScore(tokens[c+1].text) {
			continue
		}
		row := MatchedRow{
			Date:           tokens[d].text,
			InspectionType: line[tokens[typeStart].start:tokens[c-1].end],
			Category:       tokens[c].text,
			Score:          tokens[c+1].text,
		}
		if c+2 < len(tokens) {
			row.Violations = line[tokens[c+2].start:]
		}
		return row, true
	}
	return MatchedRow{}, false
}

func isHeader(line string) bool {
	for _, marker := range headerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func isPermit(s string) bool {
	return (len(s) == 5 || len(s) == 6) && allDigits(s)
}

func isScore(s string) bool {
	return len(s) >= 1 && len(s) <= 3 && allDigits(s)
}

func isCategory(s string) bool {
	return s == "FOOD" || s == "RETAIL"
}

// isDateToken checks the DD-Mon-YYYY shape only; calendar validity is the
// normalizer's job.
func isDateToken(s string) bool {
	if len(s) != 11 || s[2] != '-' || s[6] != '-' {
		return false
	}
	if !allDigits(s[0:2]) || !allDigits(s[7:11]) {
		return false
	}
	for i := 3; i < 6; i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return true
}

func isTypeSpan(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isASCIILetter(c) && c != '/' && c != ' ' && c != '-' {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
