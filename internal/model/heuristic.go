package model

// Heuristic scores with a fixed hand-specified weight dictionary over a
// small feature subset. No fitting occurs; it is the cold-start strategy
// when the panel carries no positive labels at all. Signs are chosen so
// that riskier conditions push the score up.
type Heuristic struct {
	Columns []string           `json:"columns"`
	Weights map[string]float64 `json:"weights"`
}

// DefaultHeuristicWeights applies to standardized feature values.
func DefaultHeuristicWeights() map[string]float64 {
	return map[string]float64{
		"pol_risk_3m_change":      0.28,
		"pol_risk_score":          0.18,
		"trade_deficit":           0.14,
		"trade_deficit_3m_change": 0.10,
		"gscpi":                   0.12,
		"fx_3m_std":               0.08,
		"gscpi_3m_mean":           0.05,
		"unrate":                  0.03,
		"manuf_m_t":               0.02,
	}
}

// NewHeuristic binds the weight dictionary to a feature schema.
func NewHeuristic(columns []string, weights map[string]float64) *Heuristic {
	if weights == nil {
		weights = DefaultHeuristicWeights()
	}
	return &Heuristic{Columns: columns, Weights: weights}
}

func (h *Heuristic) Name() string { return StrategyHeuristic }

func (h *Heuristic) PredictProba(x []float64) float64 {
	score := 0.0
	for j, col := range h.Columns {
		if w, ok := h.Weights[col]; ok && j < len(x) {
			score += w * x[j]
		}
	}
	return sigmoid(score)
}

func (h *Heuristic) RiskWeights() []float64 {
	weights := make([]float64, len(h.Columns))
	for j, col := range h.Columns {
		weights[j] = h.Weights[col]
	}
	return weights
}
