package model

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"tariffscope/internal/features"
)

// MinSupervised is the positive-label count at which full supervised
// boosting becomes worthwhile. Below it the regularized logistic model
// takes over; with no positives at all, the fixed heuristic.
const MinSupervised = 50

// Result is a completed training run.
type Result struct {
	Strategy  Strategy
	Scaler    *Scaler
	Columns   []string
	NRows     int
	NPositive int
	// PRAUC is the held-out average precision; NaN when the selected
	// strategy had no held-out evaluation.
	PRAUC float64
}

// Trainer selects and fits a strategy from the assembled feature panel.
type Trainer struct {
	minSupervised int
	boostedCfg    BoostedConfig
	logisticCfg   LogisticConfig
	log           *slog.Logger
}

// NewTrainer builds a Trainer with default configs.
func NewTrainer(log *slog.Logger) *Trainer {
	if log == nil {
		log = slog.Default()
	}
	return &Trainer{
		minSupervised: MinSupervised,
		boostedCfg:    DefaultBoostedConfig(),
		logisticCfg:   DefaultLogisticConfig(),
		log:           log,
	}
}

// WithMinSupervised overrides the ladder threshold, for tests.
func (t *Trainer) WithMinSupervised(n int) *Trainer {
	t.minSupervised = n
	return t
}

// Train runs the selection ladder on n_positive and fits the chosen
// strategy. Everything is deterministic: rerunning on identical input
// yields the same strategy and identical coefficients.
func (t *Trainer) Train(ctx context.Context, p *features.Panel) (*Result, error) {
	if p == nil || len(p.Rows) == 0 {
		return nil, errors.New("empty feature panel")
	}

	nPos := p.Positives()
	t.log.InfoContext(ctx, "training model",
		slog.Int("rows", len(p.Rows)),
		slog.Int("n_positive", nPos),
	)

	switch {
	case nPos >= t.minSupervised:
		return t.trainBoosted(ctx, p, nPos)
	case nPos >= 1:
		return t.trainLogistic(ctx, p, nPos)
	default:
		return t.trainHeuristic(ctx, p)
	}
}

func (t *Trainer) trainBoosted(ctx context.Context, p *features.Panel, nPos int) (*Result, error) {
	trainRows, testRows := splitByMonth(p.Rows, 0.8)
	if len(trainRows) == 0 || len(testRows) == 0 {
		// Too few months to hold any out; fit on everything and report
		// no evaluation rather than a score measured on training data.
		trainRows, testRows = p.Rows, nil
	}

	scaler := FitScaler(matrix(trainRows), p.Columns)
	xTrain := scaler.TransformAll(matrix(trainRows))

	boosted := TrainBoosted(xTrain, labels(trainRows), weights(trainRows), t.boostedCfg)

	prAUC := math.NaN()
	if len(testRows) > 0 {
		xTest := scaler.TransformAll(matrix(testRows))
		scores := make([]float64, len(xTest))
		for i, row := range xTest {
			scores[i] = boosted.PredictProba(row)
		}
		prAUC = averagePrecision(labels(testRows), scores)
	}

	if math.IsNaN(prAUC) {
		t.log.InfoContext(ctx, "boosted strategy selected",
			slog.Int("stumps", len(boosted.Stumps)),
		)
	} else {
		t.log.InfoContext(ctx, "boosted strategy selected",
			slog.Int("stumps", len(boosted.Stumps)),
			slog.Float64("pr_auc", prAUC),
		)
	}
	return &Result{
		Strategy:  boosted,
		Scaler:    scaler,
		Columns:   p.Columns,
		NRows:     len(p.Rows),
		NPositive: nPos,
		PRAUC:     prAUC,
	}, nil
}

func (t *Trainer) trainLogistic(ctx context.Context, p *features.Panel, nPos int) (*Result, error) {
	scaler := FitScaler(matrix(p.Rows), p.Columns)
	x := scaler.TransformAll(matrix(p.Rows))

	logistic := TrainLogistic(x, labels(p.Rows), weights(p.Rows), t.logisticCfg)

	t.log.InfoContext(ctx, "logistic strategy selected",
		slog.Int("n_positive", nPos),
	)
	return &Result{
		Strategy:  logistic,
		Scaler:    scaler,
		Columns:   p.Columns,
		NRows:     len(p.Rows),
		NPositive: nPos,
		PRAUC:     math.NaN(),
	}, nil
}

func (t *Trainer) trainHeuristic(ctx context.Context, p *features.Panel) (*Result, error) {
	scaler := FitScaler(matrix(p.Rows), p.Columns)

	t.log.InfoContext(ctx, "no positive labels, heuristic strategy selected")
	return &Result{
		Strategy:  NewHeuristic(p.Columns, nil),
		Scaler:    scaler,
		Columns:   p.Columns,
		NRows:     len(p.Rows),
		NPositive: 0,
		PRAUC:     math.NaN(),
	}, nil
}

// splitByMonth holds out the last share of calendar months as the test
// set, never mixing a month across the boundary.
func splitByMonth(rows []features.Row, trainShare float64) (train, test []features.Row) {
	monthSet := make(map[time.Time]struct{})
	for _, r := range rows {
		monthSet[r.Month] = struct{}{}
	}
	months := make([]time.Time, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	cutIdx := int(float64(len(months)) * trainShare)
	if cutIdx <= 0 || cutIdx >= len(months) {
		return rows, nil
	}
	cutoff := months[cutIdx]
	for _, r := range rows {
		if r.Month.Before(cutoff) {
			train = append(train, r)
		} else {
			test = append(test, r)
		}
	}
	return train, test
}

func matrix(rows []features.Row) [][]float64 {
	x := make([][]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Values
	}
	return x
}

func labels(rows []features.Row) []int {
	y := make([]int, len(rows))
	for i, r := range rows {
		y[i] = r.Y
	}
	return y
}

func weights(rows []features.Row) []float64 {
	w := make([]float64, len(rows))
	for i, r := range rows {
		w[i] = r.SampleWeight
	}
	return w
}

// averagePrecision is PR-AUC computed as precision averaged over the
// positive hits in score-descending order. Ties break by original index
// so the metric is reproducible.
func averagePrecision(y []int, scores []float64) float64 {
	nPos := 0
	for _, label := range y {
		if label == 1 {
			nPos++
		}
	}
	if nPos == 0 {
		return 0
	}

	order := make([]int, len(y))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	hits := 0
	sum := 0.0
	for rank, i := range order {
		if y[i] == 1 {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}
	return sum / float64(nPos)
}
