package parsing

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// Parser turns the page texts of an inspection report into establishments.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse processes pages in order and lines within a page in order. Lines that
// are not rows are skipped silently; rows with an invalid date are reported in
// Diagnostics and left out of the result.
func (p *Parser) Parse(pages []string) domain.ParseResult {
	agg := NewAggregator()
	result := domain.ParseResult{}

	for pageIdx, page := range pages {
		result.Stats.Pages++
		for lineIdx, line := range splitLines(page) {
			result.Stats.Lines++
			row, ok := ClassifyLine(line)
			if !ok {
				continue
			}
			result.Stats.MatchedRows++

			record, err := Normalize(row)
			if err != nil {
				diag := p.diagnose(pageIdx+1, lineIdx+1, row, err)
				result.Diagnostics = append(result.Diagnostics, diag)
				result.Stats.FormatErrors++
				continue
			}

			name, address := SplitNameAddress(row.Prefix)
			agg.Add(row.Permit, name, address, record)
		}
	}

	result.Establishments = agg.Establishments()
	return result
}

// ParseText is Parse for a single page of text.
func (p *Parser) ParseText(text string) domain.ParseResult {
	return p.Parse([]string{text})
}

func (p *Parser) diagnose(page, line int, row MatchedRow, err error) domain.RowDiagnostic {
	var formatErr *domain.FormatError
	if errors.As(err, &formatErr) {
		formatErr.Page = page
		formatErr.Line = line
	}
	p.logger.Warn("row_format_error",
		"page", page,
		"line", line,
		"permit", row.Permit,
		"error", err,
	)
	return domain.RowDiagnostic{
		Page:    page,
		Line:    line,
		Permit:  row.Permit,
		Message: err.Error(),
	}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
