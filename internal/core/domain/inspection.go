package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryFood   Category = "FOOD"
	CategoryRetail Category = "RETAIL"
)

// ParseCategory accepts FOOD or RETAIL in any letter case.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryFood:
		return CategoryFood, true
	case CategoryRetail:
		return CategoryRetail, true
	default:
		return "", false
	}
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

type InspectionRecord struct {
	Date           Date     `json:"date" yaml:"date"`
	InspectionType string   `json:"inspection_type" yaml:"inspection_type"`
	Category       Category `json:"category" yaml:"category"`
	Score          int      `json:"score" yaml:"score"`
	Violations     []int    `json:"violations" yaml:"violations"`
}

type Establishment struct {
	Permit      string             `json:"permit" yaml:"permit"`
	Name        string             `json:"name" yaml:"name"`
	Address     string             `json:"address" yaml:"address"`
	Inspections []InspectionRecord `json:"inspections" yaml:"inspections"`
}

// RowDiagnostic describes a grammar-matched row that could not be normalized.
type RowDiagnostic struct {
	Page    int    `json:"page" yaml:"page"`
	Line    int    `json:"line" yaml:"line"`
	Permit  string `json:"permit" yaml:"permit"`
	Message string `json:"message" yaml:"message"`
}

type ParseStats struct {
	Pages        int `json:"pages" yaml:"pages"`
	Lines        int `json:"lines" yaml:"lines"`
	MatchedRows  int `json:"matched_rows" yaml:"matched_rows"`
	FormatErrors int `json:"format_errors" yaml:"format_errors"`
}

type ParseResult struct {
	Establishments []Establishment `json:"establishments" yaml:"establishments"`
	Diagnostics    []RowDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Stats          ParseStats      `json:"stats" yaml:"stats"`
}
