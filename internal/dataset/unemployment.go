package dataset

import (
	"sort"
	"time"

	apperrors "tariffscope/internal/errors"
)

// LoadUnemployment parses the FRED UNRATE export: one US-wide monthly
// observation per row.
func LoadUnemployment(path string) ([]UnemploymentRow, error) {
	const source = "unemployment"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}

	idx := headerIndex(records[0])
	dateCol, ok := idx["observation_date"]
	if !ok {
		if dateCol, ok = idx["DATE"]; !ok {
			return nil, apperrors.Loadf(source, path, "missing observation_date column")
		}
	}
	rateCol, ok := idx["UNRATE"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing UNRATE column")
	}

	var rows []UnemploymentRow
	for _, record := range records[1:] {
		date, err := time.Parse("2006-01-02", cell(record, dateCol))
		if err != nil {
			continue
		}
		rate, ok := parseNumber(cell(record, rateCol))
		if !ok {
			continue
		}
		rows = append(rows, UnemploymentRow{Month: MonthKey(date), Rate: rate})
	}
	if len(rows) == 0 {
		return nil, apperrors.Loadf(source, path, "no parsable observations")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows, nil
}
