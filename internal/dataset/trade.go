package dataset

import (
	"math"
	"sort"
	"strconv"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/normalize"
)

// LoadBilateralTrade parses the census-style bilateral trade file: one row
// per (CTYNAME, year) with wide month-coded import/export columns
// (IJAN..IDEC / EJAN..EDEC), melted into one TradeRow per country-month.
func LoadBilateralTrade(path string, n *normalize.Normalizer) ([]TradeRow, error) {
	const source = "bilateral_trade"

	records, err := readCSV(path)
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) < 2 {
		return nil, apperrors.Loadf(source, path, "no data rows")
	}

	idx := headerIndex(records[0])
	countryCol, ok := idx["CTYNAME"]
	if !ok {
		return nil, apperrors.Loadf(source, path, "missing CTYNAME column")
	}
	yearCol, ok := idx["year"]
	if !ok {
		if yearCol, ok = idx["Year"]; !ok {
			return nil, apperrors.Loadf(source, path, "missing year column")
		}
	}

	type monthCols struct {
		imports int
		exports int
	}
	cols := make(map[string]monthCols)
	for abbrev := range monthAbbrev {
		ic, iok := idx["I"+abbrev]
		ec, eok := idx["E"+abbrev]
		if iok && eok {
			cols[abbrev] = monthCols{imports: ic, exports: ec}
		}
	}
	if len(cols) == 0 {
		return nil, apperrors.Loadf(source, path, "no IJAN..IDEC/EJAN..EDEC month columns found")
	}

	var rows []TradeRow
	for _, record := range records[1:] {
		year, err := strconv.Atoi(cell(record, yearCol))
		if err != nil {
			continue // summary and footnote rows carry no year
		}
		country := n.Country(cell(record, countryCol))
		if country == "" {
			continue
		}
		for abbrev, mc := range cols {
			imports, iok := parseNumber(cell(record, mc.imports))
			exports, eok := parseNumber(cell(record, mc.exports))
			if !iok && !eok {
				continue
			}
			// A one-sided observation stays missing on the absent side;
			// the deficit is then NaN too and imputation decides later.
			if !iok {
				imports = math.NaN()
			}
			if !eok {
				exports = math.NaN()
			}
			rows = append(rows, TradeRow{
				Country: country,
				Month:   Month(year, monthAbbrev[abbrev]),
				Imports: imports,
				Exports: exports,
				Deficit: imports - exports,
			})
		}
	}
	if len(rows) == 0 {
		return nil, apperrors.Loadf(source, path, "no parsable country-month values")
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows, nil
}
