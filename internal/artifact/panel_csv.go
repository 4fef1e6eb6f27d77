package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"time"

	"tariffscope/internal/features"
)

const monthLayout = "2006-01-02"

// encodePanelCSV writes the panel with key columns first, then the
// feature schema. Missing values encode as empty cells.
func encodePanelCSV(p *features.Panel) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"country", "sector", "month", "y", "sample_weight"}, p.Columns...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(header))
	for _, r := range p.Rows {
		record[0] = r.Country
		record[1] = r.Sector
		record[2] = r.Month.Format(monthLayout)
		record[3] = strconv.Itoa(r.Y)
		record[4] = formatFloat(r.SampleWeight)
		for j, v := range r.Values {
			record[5+j] = formatFloat(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodePanelCSV(data []byte) (*features.Panel, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty panel snapshot")
	}

	header := records[0]
	if len(header) < 5 {
		return nil, fmt.Errorf("panel snapshot header too short: %d columns", len(header))
	}
	p := &features.Panel{Columns: append([]string(nil), header[5:]...)}

	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("panel snapshot row %d: got %d fields, want %d", i+1, len(rec), len(header))
		}
		month, err := time.Parse(monthLayout, rec[2])
		if err != nil {
			return nil, fmt.Errorf("panel snapshot row %d: bad month %q", i+1, rec[2])
		}
		y, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("panel snapshot row %d: bad label %q", i+1, rec[3])
		}
		weight, err := parseFloat(rec[4])
		if err != nil {
			return nil, fmt.Errorf("panel snapshot row %d: bad weight %q", i+1, rec[4])
		}

		values := make([]float64, len(p.Columns))
		for j, cell := range rec[5:] {
			values[j], err = parseFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("panel snapshot row %d col %s: %w", i+1, p.Columns[j], err)
			}
		}
		p.Rows = append(p.Rows, features.Row{
			Country:      rec[0],
			Sector:       rec[1],
			Month:        month,
			Y:            y,
			SampleWeight: weight,
			Values:       values,
		})
	}
	return p, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
