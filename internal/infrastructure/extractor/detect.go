package extractor

import (
	"context"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/ports"
	"github.com/kirillkom/food-inspections/internal/infrastructure/extractor/pdftext"
)

// Auto sends PDFs to the pdf extractor and everything else to the text one.
type Auto struct {
	pdf  ports.PageExtractor
	text ports.PageExtractor
}

func NewAuto(pdf ports.PageExtractor, text ports.PageExtractor) *Auto {
	return &Auto{pdf: pdf, text: text}
}

func (a *Auto) ExtractPages(ctx context.Context, doc *domain.SourceDocument) ([]string, error) {
	if doc != nil && pdftext.IsPDF(doc.Body) {
		return a.pdf.ExtractPages(ctx, doc)
	}
	return a.text.ExtractPages(ctx, doc)
}
