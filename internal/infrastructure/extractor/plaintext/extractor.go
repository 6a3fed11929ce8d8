package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// Extractor reads text dumps where pages are separated by form feeds, the
// way pdftotext writes them.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractPages(ctx context.Context, doc *domain.SourceDocument) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text pages", fmt.Errorf("document is nil"))
	}
	if !utf8.Valid(doc.Body) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text pages", fmt.Errorf("%s is not utf-8 text", doc.Filename))
	}

	text := strings.TrimSuffix(string(doc.Body), "\f")
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\f"), nil
}
