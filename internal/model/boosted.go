package model

import (
	"math"
	"sort"
)

// Stump is a depth-one regression tree on a single feature. Rows with the
// feature at or below the threshold take the left leaf.
type Stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

// Boosted is a gradient-boosted ensemble of stumps fit to log-loss.
// Training is fully deterministic: features scan in schema order,
// candidate thresholds in ascending order, and ties keep the first best.
type Boosted struct {
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Stumps       []Stump `json:"stumps"`
}

// BoostedConfig controls ensemble fitting.
type BoostedConfig struct {
	Rounds        int
	LearningRate  float64
	MaxThresholds int
	L2            float64
}

// DefaultBoostedConfig mirrors the usual gradient-boosting setup for this
// panel size.
func DefaultBoostedConfig() BoostedConfig {
	return BoostedConfig{
		Rounds:        200,
		LearningRate:  0.05,
		MaxThresholds: 16,
		L2:            1.0,
	}
}

func (b *Boosted) Name() string { return StrategyBoosted }

func (b *Boosted) rawScore(x []float64) float64 {
	score := b.BaseScore
	for _, s := range b.Stumps {
		if x[s.Feature] <= s.Threshold {
			score += b.LearningRate * s.Left
		} else {
			score += b.LearningRate * s.Right
		}
	}
	return score
}

func (b *Boosted) PredictProba(x []float64) float64 {
	return sigmoid(b.rawScore(x))
}

// RiskWeights reports per-feature importance as the accumulated leaf
// spread of the stumps splitting on that feature.
func (b *Boosted) RiskWeights() []float64 {
	maxFeature := -1
	for _, s := range b.Stumps {
		if s.Feature > maxFeature {
			maxFeature = s.Feature
		}
	}
	weights := make([]float64, maxFeature+1)
	for _, s := range b.Stumps {
		weights[s.Feature] += b.LearningRate * (s.Right - s.Left)
	}
	return weights
}

// TrainBoosted fits the ensemble on standardized features. Positive rows
// get their sample weights scaled up by the negative/positive ratio so the
// rare class is not drowned out.
func TrainBoosted(x [][]float64, y []int, sampleWeight []float64, cfg BoostedConfig) *Boosted {
	n := len(x)
	if n == 0 {
		return &Boosted{BaseScore: 0, LearningRate: cfg.LearningRate}
	}
	nFeatures := len(x[0])

	w := applyClassBalance(y, sampleWeight)

	sumW, sumWY := 0.0, 0.0
	for i := range y {
		sumW += w[i]
		sumWY += w[i] * float64(y[i])
	}
	p0 := clampProb(sumWY / sumW)
	base := math.Log(p0 / (1 - p0))

	thresholds := make([][]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		thresholds[j] = candidateThresholds(x, j, cfg.MaxThresholds)
	}

	b := &Boosted{BaseScore: base, LearningRate: cfg.LearningRate}
	score := make([]float64, n)
	for i := range score {
		score[i] = base
	}
	grad := make([]float64, n)
	hess := make([]float64, n)

	for round := 0; round < cfg.Rounds; round++ {
		for i := range x {
			p := sigmoid(score[i])
			grad[i] = w[i] * (float64(y[i]) - p)
			hess[i] = w[i] * p * (1 - p)
		}

		best, ok := bestStump(x, grad, hess, thresholds, cfg.L2)
		if !ok {
			break
		}
		b.Stumps = append(b.Stumps, best)
		for i := range x {
			if x[i][best.Feature] <= best.Threshold {
				score[i] += cfg.LearningRate * best.Left
			} else {
				score[i] += cfg.LearningRate * best.Right
			}
		}
	}
	return b
}

func applyClassBalance(y []int, sampleWeight []float64) []float64 {
	pos, neg := 0, 0
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	ratio := 1.0
	if pos > 0 && neg > pos {
		ratio = float64(neg) / float64(pos)
	}
	w := make([]float64, len(y))
	for i, label := range y {
		w[i] = 1.0
		if sampleWeight != nil {
			w[i] = sampleWeight[i]
		}
		if label == 1 {
			w[i] *= ratio
		}
	}
	return w
}

// candidateThresholds picks up to maxN evenly spaced quantile cut points
// from the observed values of one feature.
func candidateThresholds(x [][]float64, feature, maxN int) []float64 {
	values := make([]float64, 0, len(x))
	for _, row := range x {
		if !math.IsNaN(row[feature]) {
			values = append(values, row[feature])
		}
	}
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	var out []float64
	seen := make(map[float64]bool)
	for k := 1; k <= maxN; k++ {
		idx := k * len(values) / (maxN + 1)
		if idx >= len(values) {
			idx = len(values) - 1
		}
		v := values[idx]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func bestStump(x [][]float64, grad, hess []float64, thresholds [][]float64, l2 float64) (Stump, bool) {
	var best Stump
	bestGain := math.Inf(-1)
	found := false

	totalG, totalH := 0.0, 0.0
	for i := range grad {
		totalG += grad[i]
		totalH += hess[i]
	}

	for j := range thresholds {
		for _, thr := range thresholds[j] {
			leftG, leftH := 0.0, 0.0
			leftN, rightN := 0, 0
			for i, row := range x {
				if row[j] <= thr {
					leftG += grad[i]
					leftH += hess[i]
					leftN++
				} else {
					rightN++
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}
			rightG := totalG - leftG
			rightH := totalH - leftH
			gain := leftG*leftG/(leftH+l2) + rightG*rightG/(rightH+l2)
			if gain > bestGain {
				bestGain = gain
				best = Stump{
					Feature:   j,
					Threshold: thr,
					Left:      leftG / (leftH + l2),
					Right:     rightG / (rightH + l2),
				}
				found = true
			}
		}
	}
	return best, found
}

func clampProb(p float64) float64 {
	const eps = 1e-4
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
