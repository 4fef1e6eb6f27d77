package dataset

import (
	"sort"
	"time"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/normalize"
)

// manufacturingVars are the variable codes kept from the source; anything
// else (shares, indexes) is dropped.
var manufacturingVars = map[string]struct{}{
	"X_T": {}, "M_T": {}, "X_Manuf": {}, "M_Manuf": {}, "X_MHT": {}, "M_MHT": {},
}

// LoadManufacturing parses the manufacturing trade statistics file: one
// row per (Country, Year-period, VariableCode), collapsed into one
// ManufacturingRow per country-month. Quarterly and annual periods are
// assigned to the first month of their period; duplicate observations for
// the same variable are averaged.
func LoadManufacturing(path string, n *normalize.Normalizer) ([]ManufacturingRow, error) {
	const source = "manufacturing"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}

	idx := headerIndex(records[0])
	countryCol, ok := idx["Country"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing Country column")
	}
	yearCol, ok := idx["Year"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing Year column")
	}
	varCol, ok := idx["VariableCode"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing VariableCode column")
	}
	valueCol, ok := idx["Value"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing Value column")
	}

	type key struct {
		country string
		month   time.Time
	}
	type agg struct {
		sum   map[string]float64
		count map[string]int
	}
	cells := make(map[key]*agg)

	for _, record := range records[1:] {
		variable := cell(record, varCol)
		if _, ok := manufacturingVars[variable]; !ok {
			continue
		}
		month, ok := parseYearColumn(cell(record, yearCol))
		if !ok {
			continue
		}
		country := n.Country(cell(record, countryCol))
		if country == "" {
			continue
		}
		v, ok := parseNumber(cell(record, valueCol))
		if !ok {
			continue
		}
		k := key{country, month}
		a := cells[k]
		if a == nil {
			a = &agg{sum: make(map[string]float64), count: make(map[string]int)}
			cells[k] = a
		}
		a.sum[variable] += v
		a.count[variable]++
	}
	if len(cells) == 0 {
		return nil, apperrors.Loadf(source, path, "no parsable variable rows")
	}

	mean := func(a *agg, variable string) float64 {
		if a.count[variable] == 0 {
			return 0
		}
		return a.sum[variable] / float64(a.count[variable])
	}

	rows := make([]ManufacturingRow, 0, len(cells))
	for k, a := range cells {
		rows = append(rows, ManufacturingRow{
			Country:         k.country,
			Month:           k.month,
			ExportsTotal:    mean(a, "X_T"),
			ImportsTotal:    mean(a, "M_T"),
			ExportsManuf:    mean(a, "X_Manuf"),
			ImportsManuf:    mean(a, "M_Manuf"),
			ExportsHighTech: mean(a, "X_MHT"),
			ImportsHighTech: mean(a, "M_MHT"),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows, nil
}
