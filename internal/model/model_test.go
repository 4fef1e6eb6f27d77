package model

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffscope/internal/features"
)

func TestScalerImputeAndStandardize(t *testing.T) {
	cols := []string{"a", "b"}
	rows := [][]float64{
		{1, 10},
		{3, math.NaN()},
		{5, 30},
	}

	s := FitScaler(rows, cols)

	// Median of column b's observed values fills the gap.
	assert.Equal(t, 20.0, s.FillValues[1])

	out := s.Transform([]float64{3, math.NaN()})
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 0, out[1], 1e-9)

	// Transformed training matrix has zero mean per column.
	all := s.TransformAll(rows)
	for j := range cols {
		sum := 0.0
		for i := range all {
			sum += all[i][j]
		}
		assert.InDelta(t, 0, sum, 1e-9, "column %s not centered", cols[j])
	}
}

func TestScalerConstantColumn(t *testing.T) {
	s := FitScaler([][]float64{{7}, {7}, {7}}, []string{"c"})
	out := s.Transform([]float64{7})
	assert.False(t, math.IsNaN(out[0]))
	assert.Equal(t, 0.0, out[0])
}

func TestLogisticLearnsSeparableData(t *testing.T) {
	// One informative feature: positives sit at +1, negatives at -1.
	var x [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		x = append(x, []float64{1, 0})
		y = append(y, 1)
		x = append(x, []float64{-1, 0})
		y = append(y, 0)
	}

	m := TrainLogistic(x, y, nil, DefaultLogisticConfig())

	assert.Greater(t, m.PredictProba([]float64{1, 0}), 0.8)
	assert.Less(t, m.PredictProba([]float64{-1, 0}), 0.2)
	assert.Greater(t, m.Weights[0], math.Abs(m.Weights[1]))
}

func TestBoostedLearnsThresholdRule(t *testing.T) {
	var x [][]float64
	var y []int
	for i := 0; i < 100; i++ {
		v := float64(i%10) - 5
		x = append(x, []float64{v, 0.5})
		if v > 1 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}

	b := TrainBoosted(x, y, nil, DefaultBoostedConfig())

	assert.Greater(t, b.PredictProba([]float64{4, 0.5}), 0.7)
	assert.Less(t, b.PredictProba([]float64{-4, 0.5}), 0.3)
}

func TestBoostedDeterministic(t *testing.T) {
	var x [][]float64
	var y []int
	for i := 0; i < 60; i++ {
		x = append(x, []float64{float64(i % 7), float64(i % 3)})
		y = append(y, i%5/4)
	}

	a := TrainBoosted(x, y, nil, DefaultBoostedConfig())
	b := TrainBoosted(x, y, nil, DefaultBoostedConfig())

	require.Equal(t, len(a.Stumps), len(b.Stumps))
	assert.Equal(t, a.Stumps, b.Stumps)
	assert.Equal(t, a.BaseScore, b.BaseScore)
}

func TestHeuristicScoring(t *testing.T) {
	cols := []string{"pol_risk_score", "gscpi", "tariff_count_3m"}
	h := NewHeuristic(cols, nil)

	neutral := h.PredictProba([]float64{0, 0, 0})
	assert.InDelta(t, 0.5, neutral, 1e-9)

	risky := h.PredictProba([]float64{2, 2, 0})
	assert.Greater(t, risky, neutral)

	// Unweighted columns contribute nothing.
	same := h.PredictProba([]float64{2, 2, 99})
	assert.Equal(t, risky, same)
}

func TestStrategyRoundTrip(t *testing.T) {
	strategies := []Strategy{
		&Boosted{BaseScore: -1.2, LearningRate: 0.05, Stumps: []Stump{{Feature: 3, Threshold: 0.5, Left: -0.1, Right: 0.4}}},
		&Logistic{Weights: []float64{0.5, -0.2}, Bias: -1},
		NewHeuristic([]string{"gscpi"}, nil),
	}

	x := []float64{0.3, -0.7, 1.1, 0.9}
	for _, s := range strategies {
		data, err := MarshalStrategy(s)
		require.NoError(t, err)

		restored, err := UnmarshalStrategy(data)
		require.NoError(t, err)
		assert.Equal(t, s.Name(), restored.Name())
		assert.InDelta(t, s.PredictProba(x[:featureDim(s)]), restored.PredictProba(x[:featureDim(s)]), 1e-12)
	}

	_, err := UnmarshalStrategy([]byte(`{"strategy":"oracle","model":{}}`))
	assert.Error(t, err)
}

func featureDim(s Strategy) int {
	switch m := s.(type) {
	case *Logistic:
		return len(m.Weights)
	case *Heuristic:
		return len(m.Columns)
	default:
		return 4
	}
}

func syntheticPanel(nPositive int) *features.Panel {
	cols := features.Columns()
	p := &features.Panel{Columns: cols}
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

	total := 400
	for i := 0; i < total; i++ {
		values := make([]float64, len(cols))
		for j := range values {
			values[j] = float64((i*7+j*3)%11) / 11
		}
		y := 0
		if i < nPositive {
			y = 1
			values[0] += 2
		}
		p.Rows = append(p.Rows, features.Row{
			Country:      "C",
			Sector:       "General",
			Month:        start.AddDate(0, i%40, 0),
			Y:            y,
			SampleWeight: 1,
			Values:       values,
		})
	}
	return p
}

func TestTrainerLadder(t *testing.T) {
	tests := []struct {
		name      string
		positives int
		strategy  string
	}{
		{"zero positives uses heuristic", 0, StrategyHeuristic},
		{"sparse labels use logistic", 30, StrategyLogistic},
		{"rich labels use boosted", 200, StrategyBoosted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewTrainer(nil).Train(context.Background(), syntheticPanel(tt.positives))
			require.NoError(t, err)

			assert.Equal(t, tt.strategy, res.Strategy.Name())
			assert.Equal(t, tt.positives, res.NPositive)
			assert.Equal(t, features.Columns(), res.Columns)
			require.NotNil(t, res.Scaler)
			assert.Len(t, res.Scaler.Mean, len(res.Columns))

			if tt.strategy == StrategyBoosted {
				assert.False(t, math.IsNaN(res.PRAUC))
				assert.GreaterOrEqual(t, res.PRAUC, 0.0)
				assert.LessOrEqual(t, res.PRAUC, 1.0)
			} else {
				assert.True(t, math.IsNaN(res.PRAUC))
			}
		})
	}
}

func TestTrainerBoostedSingleMonthNoHoldout(t *testing.T) {
	// All rows share one month, so no calendar split exists. The model
	// still trains but PR-AUC must report unevaluated, never a score
	// measured on the training rows themselves.
	p := syntheticPanel(200)
	month := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := range p.Rows {
		p.Rows[i].Month = month
	}

	res, err := NewTrainer(nil).Train(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StrategyBoosted, res.Strategy.Name())
	assert.True(t, math.IsNaN(res.PRAUC))
}

func TestTrainerEmptyPanel(t *testing.T) {
	_, err := NewTrainer(nil).Train(context.Background(), &features.Panel{})
	assert.Error(t, err)
}

func TestTrainerIdempotent(t *testing.T) {
	p := syntheticPanel(120)
	a, err := NewTrainer(nil).Train(context.Background(), p)
	require.NoError(t, err)
	b, err := NewTrainer(nil).Train(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, a.Strategy.Name(), b.Strategy.Name())
	assert.Equal(t, a.Scaler.Mean, b.Scaler.Mean)
	assert.Equal(t, a.PRAUC, b.PRAUC)

	da, err := MarshalStrategy(a.Strategy)
	require.NoError(t, err)
	db, err := MarshalStrategy(b.Strategy)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestAveragePrecision(t *testing.T) {
	// Perfect ranking puts both positives first.
	assert.InDelta(t, 1.0, averagePrecision([]int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.2, 0.1}), 1e-9)
	// A positive demoted below a negative costs precision.
	ap := averagePrecision([]int{1, 0, 1, 0}, []float64{0.9, 0.8, 0.7, 0.1})
	assert.InDelta(t, (1.0+2.0/3.0)/2.0, ap, 1e-9)
	// No positives at all.
	assert.Equal(t, 0.0, averagePrecision([]int{0, 0}, []float64{0.5, 0.4}))
}
