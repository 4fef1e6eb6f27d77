package predict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffscope/internal/artifact"
	"tariffscope/internal/dataset"
	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/features"
	"tariffscope/internal/model"
	"tariffscope/internal/normalize"
	"tariffscope/internal/panel"
)

// trainAndBundle runs the real pipeline end to end over synthetic events
// so the service test exercises the same artifact the trainer produces.
func trainAndBundle(t *testing.T) *artifact.Bundle {
	t.Helper()

	var events []dataset.TariffEvent
	for i := 0; i < 6; i++ {
		events = append(events, dataset.TariffEvent{
			Country:   "VIETNAM",
			Sector:    "Textiles",
			Announced: time.Date(2024, time.Month(2+i*2), 10, 0, 0, 0, 0, time.UTC),
		})
	}
	events = append(events, dataset.TariffEvent{
		Country:   "CHINA",
		Sector:    "Automotive",
		Announced: time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
	})

	rows := panel.NewBuilder().Build(events,
		dataset.Month(2023, time.June), dataset.Month(2025, time.January))

	src := features.Sources{Events: events}
	for m := dataset.Month(2023, time.June); !m.After(dataset.Month(2025, time.January)); m = dataset.AddMonths(m, 1) {
		src.GSCPI = append(src.GSCPI, dataset.GSCPIRow{Month: m, Value: 0.3})
		src.Trade = append(src.Trade,
			dataset.TradeRow{Country: "VIETNAM", Month: m, Imports: 100, Exports: 40, Deficit: 60},
			dataset.TradeRow{Country: "CHINA", Month: m, Imports: 400, Exports: 120, Deficit: 280})
	}

	fp := features.NewAssembler().Assemble(rows, src)
	res, err := model.NewTrainer(nil).Train(context.Background(), fp)
	require.NoError(t, err)
	return artifact.New(res, fp, panel.HorizonDays)
}

func TestPredictExactPair(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	pred, err := svc.Predict(context.Background(), "Vietnam", "Textiles")
	require.NoError(t, err)

	assert.Equal(t, "VIETNAM", pred.Country)
	assert.Equal(t, "Textiles", pred.Sector)
	assert.Equal(t, model.StrategyLogistic, pred.Strategy)
	assert.GreaterOrEqual(t, pred.Probability, 0.0)
	assert.LessOrEqual(t, pred.Probability, 1.0)
	assert.InDelta(t, pred.Probability*100, pred.RiskScore, 0.51)
	assert.Equal(t, "2025-01-01", pred.AsOfMonth)
	assert.NotEmpty(t, pred.TopDrivers)
	assert.LessOrEqual(t, len(pred.TopDrivers), 5)
}

func TestPredictCountryFallback(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	// VIETNAM has no Automotive rows; the country-level fallback still
	// serves a score under the requested sector name.
	pred, err := svc.Predict(context.Background(), "VIETNAM", "Automotive")
	require.NoError(t, err)
	assert.Equal(t, "VIETNAM", pred.Country)
	assert.Equal(t, "Automotive", pred.Sector)
}

func TestPredictUnknownCountry(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	_, err := svc.Predict(context.Background(), "Atlantis", "General")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ATLANTIS", nf.Country)
}

func TestPredictNormalizesInput(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	// Alias and casing resolve to the canonical country; an off-list
	// sector clamps to General and falls back within the country.
	pred, err := svc.Predict(context.Background(), "viet nam", "underwater basket weaving")
	require.NoError(t, err)
	assert.Equal(t, "VIETNAM", pred.Country)
	assert.Equal(t, "General", pred.Sector)
}

func TestPredictAtHistoricalMonth(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	pred, err := svc.PredictAt(context.Background(), "VIETNAM", "Textiles",
		dataset.Month(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", pred.AsOfMonth)
}

func TestPredictDriversRanked(t *testing.T) {
	svc := NewService(trainAndBundle(t), normalize.NewDefault(), nil)

	pred, err := svc.Predict(context.Background(), "CHINA", "Automotive")
	require.NoError(t, err)
	for i := 1; i < len(pred.TopDrivers); i++ {
		prev := pred.TopDrivers[i-1].Contribution
		cur := pred.TopDrivers[i].Contribution
		assert.GreaterOrEqual(t, abs(prev), abs(cur))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
