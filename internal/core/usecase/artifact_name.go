package usecase

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	ArtifactPrefix  = "inspection_data-"
	ArtifactPattern = ArtifactPrefix + "*.json"
	ManifestName    = "manifest.json"
)

var (
	singleDatePart = regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`)
	monthRangePart = regexp.MustCompile(`\d{2}\.\d{4}-\d{2}\.\d{4}`)
	singleMonth    = regexp.MustCompile(`\d{2}\.\d{4}`)
)

// ArtifactName derives the JSON artifact name from the report's file name:
//
//	Food-Retail_Inspections-1-20-2025.pdf         -> inspection_data-1-20-2025.json
//	Food-Retail_Inspections-06.2024-06.2025.pdf   -> inspection_data-06-2024-06-2025.json
//
// and falls back to the run date when the name carries no date.
func ArtifactName(sourceFilename string, now time.Time) string {
	base := filepath.Base(sourceFilename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return ArtifactPrefix + datePart(base, now) + ".json"
}

func datePart(name string, now time.Time) string {
	if m := singleDatePart.FindString(name); m != "" {
		return m
	}
	if m := monthRangePart.FindString(name); m != "" {
		return strings.ReplaceAll(m, ".", "-")
	}
	if m := singleMonth.FindString(name); m != "" {
		return strings.ReplaceAll(m, ".", "-")
	}
	return now.Format("2006-01-02")
}

// SpreadsheetName is the workbook published next to a JSON artifact.
func SpreadsheetName(artifact string) string {
	return strings.TrimSuffix(artifact, ".json") + ".xlsx"
}
