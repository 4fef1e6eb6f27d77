package dataset

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tariffscope/internal/errors"
)

// gscpiHeaderRows is the fixed metadata preamble at the top of the NY Fed
// export (title, attribution, units, blank line) before data begins.
const gscpiHeaderRows = 4

// LoadGSCPI parses the Global Supply Chain Pressure Index as a single
// US-wide monthly series. The CSV export carries a 4-row metadata preamble;
// the NY Fed's native .xlsx workbook is accepted as well and read from its
// first sheet with the same shape.
func LoadGSCPI(path string) ([]GSCPIRow, error) {
	const source = "gscpi"

	var records [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readWorkbookRows(path)
	} else {
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, apperrors.NewLoadError(source, path, err)
	}
	if len(records) <= gscpiHeaderRows {
		return nil, apperrors.Loadf(source, path, "file shorter than the %d-row metadata preamble", gscpiHeaderRows)
	}

	var rows []GSCPIRow
	for _, record := range records[gscpiHeaderRows:] {
		date, err := parseDayDate(cell(record, 0))
		if err != nil {
			continue // trailing notes rows
		}
		v, ok := parseNumber(cell(record, 1))
		if !ok {
			continue
		}
		rows = append(rows, GSCPIRow{Month: MonthKey(date), Value: v})
	}
	if len(rows) == 0 {
		return nil, apperrors.Loadf(source, path, "no parsable date/value rows after preamble")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows, nil
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Loadf("gscpi", path, "workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
