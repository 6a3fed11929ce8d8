package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

const (
	EstablishmentsSheet = "Establishments"
	InspectionsSheet    = "Inspections"
)

var (
	establishmentHeader = []any{"Permit", "Name", "Address", "Inspections"}
	inspectionHeader    = []any{"Permit", "Date", "Inspection Type", "Category", "Score", "Violations"}
)

// Exporter writes establishments as a two-sheet workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(establishments []domain.Establishment, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EstablishmentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(InspectionsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, EstablishmentsSheet, 1, establishmentHeader); err != nil {
		return err
	}
	if err := writeRow(f, InspectionsSheet, 1, inspectionHeader); err != nil {
		return err
	}

	estRow, inspRow := 2, 2
	for _, est := range establishments {
		if err := writeRow(f, EstablishmentsSheet, estRow, []any{est.Permit, est.Name, est.Address, len(est.Inspections)}); err != nil {
			return err
		}
		estRow++

		for _, rec := range est.Inspections {
			row := []any{est.Permit, rec.Date.String(), rec.InspectionType, string(rec.Category), rec.Score, joinViolations(rec.Violations)}
			if err := writeRow(f, InspectionsSheet, inspRow, row); err != nil {
				return err
			}
			inspRow++
		}
	}

	for sheet, widths := range map[string][]float64{
		EstablishmentsSheet: {10, 40, 40, 12},
		InspectionsSheet:    {10, 12, 28, 10, 8, 30},
	} {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
		for i, width := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return fmt.Errorf("set %s column width: %w", sheet, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func joinViolations(codes []int) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(code)
	}
	return strings.Join(parts, ",")
}
