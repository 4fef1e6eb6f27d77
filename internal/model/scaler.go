package model

import (
	"math"
	"sort"
)

// Scaler imputes missing values with training-time column medians and then
// standardizes to zero mean and unit variance. Fitted once per training
// run; the fitted state round-trips through JSON inside the artifact.
type Scaler struct {
	Columns    []string  `json:"columns"`
	FillValues []float64 `json:"fill_values"`
	Mean       []float64 `json:"mean"`
	Std        []float64 `json:"std"`
}

// FitScaler computes medians, means and deviations from the training rows.
// Columns whose values are all missing fill with 0; constant columns get a
// unit deviation so transformed values stay finite.
func FitScaler(rows [][]float64, columns []string) *Scaler {
	n := len(columns)
	s := &Scaler{
		Columns:    columns,
		FillValues: make([]float64, n),
		Mean:       make([]float64, n),
		Std:        make([]float64, n),
	}
	for j := 0; j < n; j++ {
		var observed []float64
		for _, row := range rows {
			if !math.IsNaN(row[j]) {
				observed = append(observed, row[j])
			}
		}
		s.FillValues[j] = median(observed)

		sum := 0.0
		for _, row := range rows {
			sum += s.fill(row[j], j)
		}
		mean := 0.0
		if len(rows) > 0 {
			mean = sum / float64(len(rows))
		}
		s.Mean[j] = mean

		ss := 0.0
		for _, row := range rows {
			d := s.fill(row[j], j) - mean
			ss += d * d
		}
		std := 0.0
		if len(rows) > 0 {
			std = math.Sqrt(ss / float64(len(rows)))
		}
		if std == 0 {
			std = 1
		}
		s.Std[j] = std
	}
	return s
}

func (s *Scaler) fill(v float64, j int) float64 {
	if math.IsNaN(v) {
		return s.FillValues[j]
	}
	return v
}

// Transform returns the imputed, standardized copy of one feature vector.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j := range row {
		out[j] = (s.fill(row[j], j) - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll transforms a matrix row by row.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
