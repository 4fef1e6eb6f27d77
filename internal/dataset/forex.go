package dataset

import (
	"sort"
	"strings"
	"time"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/normalize"
)

const fxIndicator = "Domestic currency per US Dollar"

// LoadForex parses the IMF exchange-rate export. Only monthly-frequency
// rows for the "domestic currency per US dollar" indicator are kept; all
// other measures and frequencies are discarded. End-of-period rows are
// preferred over period averages when both are present. Duplicate
// (country, month) observations are averaged.
func LoadForex(path string, n *normalize.Normalizer) ([]FXRow, error) {
	const source = "forex"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}

	idx := headerIndex(records[0])
	countryCol, ok := idx["COUNTRY"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing COUNTRY column")
	}
	freqCol, ok := idx["FREQUENCY"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing FREQUENCY column")
	}
	indicatorCol, ok := idx["INDICATOR"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing INDICATOR column")
	}
	transformCol, hasTransform := idx["TYPE_OF_TRANSFORMATION"]

	type periodCol struct {
		col   int
		month time.Time
	}
	var periods []periodCol
	for i, h := range records[0] {
		if m, ok := parsePeriodColumn(h); ok {
			periods = append(periods, periodCol{col: i, month: m})
		}
	}
	if len(periods) == 0 {
		return nil, apperrors.Loadf(source, path, "no YYYY-Mnn period columns found")
	}

	keep := selectFXRows(records[1:], freqCol, indicatorCol, transformCol, hasTransform)
	if len(keep) == 0 {
		return nil, apperrors.Loadf(source, path, "no monthly USD-rate rows found")
	}

	type key struct {
		country string
		month   time.Time
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, record := range keep {
		country := n.Country(cell(record, countryCol))
		if country == "" {
			continue
		}
		for _, p := range periods {
			v, ok := parseNumber(cell(record, p.col))
			if !ok {
				continue
			}
			k := key{country, p.month}
			sums[k] += v
			counts[k]++
		}
	}

	rows := make([]FXRow, 0, len(sums))
	for k, sum := range sums {
		rows = append(rows, FXRow{Country: k.country, Month: k.month, Rate: sum / float64(counts[k])})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows, nil
}

// selectFXRows picks the monthly USD-rate rows, preferring end-of-period
// over period-average measurements, with a last-resort fallback to any
// monthly row mentioning the US dollar.
func selectFXRows(records [][]string, freqCol, indicatorCol, transformCol int, hasTransform bool) [][]string {
	monthlyUSD := func(record []string) bool {
		return cell(record, freqCol) == "Monthly" &&
			strings.Contains(cell(record, indicatorCol), fxIndicator)
	}

	if hasTransform {
		for _, transform := range []string{"End-of-period", "Period average"} {
			var keep [][]string
			for _, record := range records {
				if monthlyUSD(record) && strings.Contains(cell(record, transformCol), transform) {
					keep = append(keep, record)
				}
			}
			if len(keep) > 0 {
				return keep
			}
		}
	}

	var keep [][]string
	for _, record := range records {
		if cell(record, freqCol) == "Monthly" && strings.Contains(cell(record, indicatorCol), "US Dollar") {
			keep = append(keep, record)
		}
	}
	return keep
}
