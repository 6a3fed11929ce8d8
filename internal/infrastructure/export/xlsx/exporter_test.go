package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

func TestExportWritesBothSheets(t *testing.T) {
	establishments := []domain.Establishment{
		{
			Permit:  "12345",
			Name:    "CHINA BUFFET",
			Address: "123 MAIN ST",
			Inspections: []domain.InspectionRecord{
				{
					Date:           domain.NewDate(2025, time.January, 2),
					InspectionType: "ROUTINE",
					Category:       domain.CategoryFood,
					Score:          92,
					Violations:     []int{12, 35},
				},
				{
					Date:           domain.NewDate(2025, time.February, 3),
					InspectionType: "FOLLOW UP",
					Category:       domain.CategoryFood,
					Score:          100,
					Violations:     []int{},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := NewExporter().Export(establishments, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	estRows, err := f.GetRows(EstablishmentsSheet)
	if err != nil {
		t.Fatalf("GetRows(establishments) error: %v", err)
	}
	if len(estRows) != 2 {
		t.Fatalf("expected header + 1 establishment, got %d rows", len(estRows))
	}
	if estRows[1][0] != "12345" || estRows[1][1] != "CHINA BUFFET" || estRows[1][3] != "2" {
		t.Fatalf("unexpected establishment row %q", estRows[1])
	}

	inspRows, err := f.GetRows(InspectionsSheet)
	if err != nil {
		t.Fatalf("GetRows(inspections) error: %v", err)
	}
	if len(inspRows) != 3 {
		t.Fatalf("expected header + 2 inspections, got %d rows", len(inspRows))
	}
	if inspRows[1][1] != "2025-01-02" || inspRows[1][5] != "12,35" {
		t.Fatalf("unexpected inspection row %q", inspRows[1])
	}
	if inspRows[2][4] != "100" {
		t.Fatalf("unexpected score cell %q", inspRows[2][4])
	}
}

func TestExportEmptyWorkbookHasHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter().Export(nil, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != EstablishmentsSheet || sheets[1] != InspectionsSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}
