package model

// Logistic is an L2-regularized logistic regression fit by batch gradient
// descent on standardized features. Its coefficients double as
// interpretable per-feature risk weights.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LogisticConfig controls fitting. Fixed epochs and a fixed step keep
// training deterministic.
type LogisticConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

// DefaultLogisticConfig uses strong regularization, matching the
// low-label regime this strategy serves.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		Epochs:       2000,
		LearningRate: 0.1,
		L2:           0.05,
	}
}

func (l *Logistic) Name() string { return StrategyLogistic }

func (l *Logistic) PredictProba(x []float64) float64 {
	z := l.Bias
	for j, w := range l.Weights {
		z += w * x[j]
	}
	return sigmoid(z)
}

func (l *Logistic) RiskWeights() []float64 {
	return l.Weights
}

// TrainLogistic fits on standardized features with balanced class
// weighting layered on top of the row sample weights.
func TrainLogistic(x [][]float64, y []int, sampleWeight []float64, cfg LogisticConfig) *Logistic {
	n := len(x)
	model := &Logistic{}
	if n == 0 {
		return model
	}
	nFeatures := len(x[0])
	model.Weights = make([]float64, nFeatures)

	w := applyClassBalance(y, sampleWeight)
	sumW := 0.0
	for _, wi := range w {
		sumW += wi
	}

	gradW := make([]float64, nFeatures)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0
		for i, row := range x {
			err := w[i] * (float64(y[i]) - model.PredictProba(row))
			for j, v := range row {
				gradW[j] += err * v
			}
			gradB += err
		}
		for j := range model.Weights {
			gradW[j] = gradW[j]/sumW - cfg.L2*model.Weights[j]
			model.Weights[j] += cfg.LearningRate * gradW[j]
		}
		model.Bias += cfg.LearningRate * gradB / sumW
	}
	return model
}
