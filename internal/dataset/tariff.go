package dataset

import (
	"sort"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/normalize"
)

// LoadTariffEvents parses the tariff action tracker. Only the first five
// columns are meaningful: target type, geography, target description,
// first-announced date and in-effect date. Geography goes through country
// normalization and the sector is derived from the target description.
// Rows without an announced date (including "TBD") are dropped: the
// announced date is the label date, so an event without one cannot
// contribute to any label window.
func LoadTariffEvents(path string, n *normalize.Normalizer) ([]TariffEvent, error) {
	const source = "tariff_tracker"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}
	if len(records[0]) < 5 {
		return nil, apperrors.Loadf(source, path, "expected at least 5 columns, got %d", len(records[0]))
	}

	const (
		geographyCol = 1
		targetCol    = 2
		announcedCol = 3
		effectiveCol = 4
	)

	var events []TariffEvent
	for _, record := range records[1:] {
		announced, err := parseUSDate(cell(record, announcedCol))
		if err != nil || announced.IsZero() {
			continue
		}
		country := n.Country(cell(record, geographyCol))
		if country == "" {
			continue
		}
		effective, err := parseUSDate(cell(record, effectiveCol))
		if err != nil {
			effective = announced // malformed in-effect dates fall back to announcement
		}
		events = append(events, TariffEvent{
			Country:   country,
			Sector:    n.Sector(cell(record, targetCol)),
			Announced: announced,
			Effective: effective,
		})
	}
	if len(events) == 0 {
		return nil, apperrors.Loadf(source, path, "no events with parsable announced dates")
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Announced.Equal(events[j].Announced) {
			return events[i].Announced.Before(events[j].Announced)
		}
		if events[i].Country != events[j].Country {
			return events[i].Country < events[j].Country
		}
		return events[i].Sector < events[j].Sector
	})
	return events, nil
}
