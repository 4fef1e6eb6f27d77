package dataset

import (
	"sort"
	"time"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/normalize"
)

// LoadPoliticalRisk parses the scraper's document-level output and
// aggregates it to one score per (entity, month). The aggregation is the
// mean, not the sum: burst scraping of the same event produces several
// rows in a month, and summing would double-count the event rather than
// measure its severity.
func LoadPoliticalRisk(path string, n *normalize.Normalizer) ([]RiskRow, error) {
	const source = "political_risk"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}

	idx := headerIndex(records[0])
	entityCol, ok := idx["Target_Entity"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing Target_Entity column")
	}
	dateCol, ok := idx["pub_date"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing pub_date column")
	}
	scoreCol, ok := idx["Political_Risk_Score"]
	if !ok {
		// Newer scraper builds write the score as Imminence_Score.
		if scoreCol, ok = idx["Imminence_Score"]; !ok {
			return nil, apperrors.Loadf(source, path, "missing Political_Risk_Score/Imminence_Score column")
		}
	}

	type key struct {
		country string
		month   time.Time
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, record := range records[1:] {
		date, err := parseDocumentDate(cell(record, dateCol))
		if err != nil {
			continue
		}
		country := n.Country(cell(record, entityCol))
		if country == "" {
			continue
		}
		score, ok := parseNumber(cell(record, scoreCol))
		if !ok {
			continue
		}
		k := key{country, MonthKey(date)}
		sums[k] += score
		counts[k]++
	}
	if len(sums) == 0 {
		return nil, apperrors.Loadf(source, path, "no parsable document rows")
	}

	rows := make([]RiskRow, 0, len(sums))
	for k, sum := range sums {
		rows = append(rows, RiskRow{Country: k.country, Month: k.month, Score: sum / float64(counts[k])})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows, nil
}

func parseDocumentDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{"2006-01-02", time.RFC3339, "1/2/2006"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
