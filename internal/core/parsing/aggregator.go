package parsing

import (
	"unicode/utf8"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// Aggregator folds inspection rows into establishments keyed by permit.
// It is not safe for concurrent use.
type Aggregator struct {
	order []string
	index map[string]*domain.Establishment
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]*domain.Establishment)}
}

// Add records one inspection for permit. The first sighting fixes the entry;
// later sightings append to its history and replace name or address only
// with a strictly longer non-empty value.
func (a *Aggregator) Add(permit, name, address string, record domain.InspectionRecord) {
	est, ok := a.index[permit]
	if !ok {
		a.order = append(a.order, permit)
		a.index[permit] = &domain.Establishment{
			Permit:      permit,
			Name:        name,
			Address:     address,
			Inspections: []domain.InspectionRecord{cloneRecord(record)},
		}
		return
	}

	if longer(name, est.Name) {
		est.Name = name
	}
	if longer(address, est.Address) {
		est.Address = address
	}
	est.Inspections = append(est.Inspections, cloneRecord(record))
}

func (a *Aggregator) Len() int {
	return len(a.order)
}

// Establishments returns copies of the aggregated entries in first-seen order.
func (a *Aggregator) Establishments() []domain.Establishment {
	out := make([]domain.Establishment, 0, len(a.order))
	for _, permit := range a.order {
		est := a.index[permit]
		inspections := make([]domain.InspectionRecord, len(est.Inspections))
		for i, rec := range est.Inspections {
			inspections[i] = cloneRecord(rec)
		}
		out = append(out, domain.Establishment{
			Permit:      est.Permit,
			Name:        est.Name,
			Address:     est.Address,
			Inspections: inspections,
		})
	}
	return out
}

func longer(candidate, current string) bool {
	return candidate != "" && utf8.RuneCountInString(candidate) > utf8.RuneCountInString(current)
}

func cloneRecord(rec domain.InspectionRecord) domain.InspectionRecord {
	violations := make([]int, len(rec.Violations))
	copy(violations, rec.Violations)
	rec.Violations = violations
	return rec
}
