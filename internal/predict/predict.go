// Package predict serves single-pair risk scores from a loaded artifact.
// It reconstructs the most recent feature row for a (country, sector)
// pair from the persisted panel snapshot, applies the trained scaler and
// strategy, and attributes the score to its strongest feature drivers.
package predict

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"tariffscope/internal/artifact"
	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/features"
	"tariffscope/internal/normalize"
)

// Driver is one feature's contribution to a score, on standardized values.
type Driver struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Prediction is a scored (country, sector) pair.
type Prediction struct {
	Country     string   `json:"country"`
	Sector      string   `json:"sector"`
	Probability float64  `json:"tariff_risk_prob"`
	RiskScore   float64  `json:"tariff_risk_score"`
	Strategy    string   `json:"strategy"`
	AsOfMonth   string   `json:"as_of_month"`
	TopDrivers  []Driver `json:"top_drivers"`
}

const topDriverCount = 5

// Service scores requests against one immutable artifact bundle.
type Service struct {
	bundle *artifact.Bundle
	norm   *normalize.Normalizer
	log    *slog.Logger
}

// NewService wraps a loaded bundle.
func NewService(bundle *artifact.Bundle, norm *normalize.Normalizer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{bundle: bundle, norm: norm, log: log}
}

// Predict scores the latest available feature row for the pair.
func (s *Service) Predict(ctx context.Context, country, sector string) (*Prediction, error) {
	return s.PredictAt(ctx, country, sector, time.Time{})
}

// PredictAt scores the most recent row at or before the target month; a
// zero target means latest available. Lookup tries the exact (country,
// sector) pair first, then falls back to any sector for the country. A
// country absent from the panel entirely is a NotFound condition, never a
// silent zero.
func (s *Service) PredictAt(ctx context.Context, country, sector string, target time.Time) (*Prediction, error) {
	normCountry := s.norm.Country(country)
	normSector := s.norm.CanonicalSector(sector)

	row, ok := s.lookupRow(normCountry, normSector, target)
	if !ok {
		s.log.WarnContext(ctx, "no feature data for country",
			slog.String("country", normCountry))
		return nil, apperrors.NewNotFound(normCountry)
	}

	scaled := s.bundle.Scaler.Transform(row.Values)
	proba := s.bundle.Strategy.PredictProba(scaled)

	pred := &Prediction{
		Country:     normCountry,
		Sector:      normSector,
		Probability: round(proba, 4),
		RiskScore:   round(proba*100, 2),
		Strategy:    s.bundle.Strategy.Name(),
		AsOfMonth:   row.Month.Format("2006-01-02"),
		TopDrivers:  topDrivers(s.bundle.Panel.Columns, scaled, s.bundle.Strategy.RiskWeights()),
	}

	s.log.InfoContext(ctx, "prediction served",
		slog.String("country", normCountry),
		slog.String("sector", normSector),
		slog.String("strategy", pred.Strategy),
		slog.Float64("probability", pred.Probability),
	)
	return pred, nil
}

// lookupRow returns the most recent matching panel row at or before
// target (any month when target is zero).
func (s *Service) lookupRow(country, sector string, target time.Time) (features.Row, bool) {
	best, ok := s.latestFor(target, func(r features.Row) bool {
		return r.Country == country && r.Sector == sector
	})
	if ok {
		return best, true
	}
	return s.latestFor(target, func(r features.Row) bool {
		return r.Country == country
	})
}

func (s *Service) latestFor(target time.Time, match func(features.Row) bool) (features.Row, bool) {
	var best features.Row
	found := false
	for _, r := range s.bundle.Panel.Rows {
		if !match(r) {
			continue
		}
		if !target.IsZero() && r.Month.After(target) {
			continue
		}
		if !found || r.Month.After(best.Month) {
			best = r
			found = true
		}
	}
	return best, found
}

// topDrivers ranks features by absolute contribution weight*value and
// keeps the strongest, dropping negligible ones.
func topDrivers(columns []string, scaled, weights []float64) []Driver {
	var drivers []Driver
	for j := range weights {
		if j >= len(scaled) || j >= len(columns) {
			break
		}
		c := weights[j] * scaled[j]
		if math.Abs(c) <= 1e-9 || math.IsNaN(c) {
			continue
		}
		drivers = append(drivers, Driver{
			Feature:      columns[j],
			Value:        round(scaled[j], 4),
			Contribution: round(c, 4),
		})
	}
	sort.SliceStable(drivers, func(a, b int) bool {
		return math.Abs(drivers[a].Contribution) > math.Abs(drivers[b].Contribution)
	})
	if len(drivers) > topDriverCount {
		drivers = drivers[:topDriverCount]
	}
	return drivers
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
