package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// gapFactor is the fraction of the font size a horizontal gap must exceed
// before two text pieces are joined with a space.
const gapFactor = 0.15

// lineFactor is the fraction of the font size two baselines may differ by
// and still belong to one line.
const lineFactor = 0.5

func init() {
	api.DisableConfigDir()
}

// Extractor renders every PDF page as lines of text, top to bottom.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) ExtractPages(ctx context.Context, doc *domain.SourceDocument) (pages []string, err error) {
	if doc == nil || !IsPDF(doc.Body) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract pdf pages", fmt.Errorf("document is not a pdf"))
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	declared, err := api.PageCount(bytes.NewReader(doc.Body), conf)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFormat, "validate pdf", err)
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = domain.WrapError(domain.ErrFormat, "extract pdf pages", fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc.Body), int64(len(doc.Body)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrFormat, "open pdf", err)
	}

	total := reader.NumPage()
	if total != declared {
		e.logger.Warn("pdf_page_count_mismatch", "file", doc.Filename, "pdfcpu", declared, "reader", total)
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, renderText(page.Content().Text))
	}
	return pages, nil
}

// IsPDF reports whether data starts with the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// renderText rebuilds lines from positioned glyphs: baselines within
// lineFactor of the font size form one line, read top to bottom.
func renderText(texts []pdf.Text) string {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.Trim(t.S, "\r\n") == "" {
			continue
		}
		glyphs = append(glyphs, t)
	}
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var lines []string
	var current []pdf.Text
	flush := func() {
		if line := renderRow(current); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		current = current[:0]
	}
	for _, g := range glyphs {
		if len(current) > 0 && current[0].Y-g.Y > lineTolerance(g) {
			flush()
		}
		current = append(current, g)
	}
	if len(current) > 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}

func lineTolerance(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 1
	}
	return lineFactor * t.FontSize
}

func renderRow(pieces []pdf.Text) string {
	sorted := make([]pdf.Text, len(pieces))
	copy(sorted, pieces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	var prev *pdf.Text
	for i := range sorted {
		cur := &sorted[i]
		if prev != nil && needsSpace(prev, cur) {
			b.WriteByte(' ')
		}
		b.WriteString(cur.S)
		prev = cur
	}
	return b.String()
}

func needsSpace(prev, cur *pdf.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}
	size := cur.FontSize
	if size <= 0 {
		size = prev.FontSize
	}
	return cur.X > prev.X+prev.W+gapFactor*size
}
