// Package model implements the three scoring strategies and the trainer
// that selects between them based on label support.
package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Strategy names recorded in artifact metadata.
const (
	StrategyBoosted   = "boosted"
	StrategyLogistic  = "logistic"
	StrategyHeuristic = "heuristic"
)

// Strategy scores one standardized feature vector. All three variants
// implement it, so callers never branch on the concrete type.
type Strategy interface {
	Name() string
	PredictProba(x []float64) float64
	// RiskWeights surfaces per-feature weights for driver attribution,
	// aligned with the scaler's column order.
	RiskWeights() []float64
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// MarshalStrategy wraps a strategy with its name so the artifact can
// restore the right concrete type.
func MarshalStrategy(s Strategy) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Strategy string          `json:"strategy"`
		Model    json.RawMessage `json:"model"`
	}{Strategy: s.Name(), Model: payload})
}

// UnmarshalStrategy restores a strategy serialized by MarshalStrategy.
func UnmarshalStrategy(data []byte) (Strategy, error) {
	var envelope struct {
		Strategy string          `json:"strategy"`
		Model    json.RawMessage `json:"model"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode strategy envelope: %w", err)
	}
	switch envelope.Strategy {
	case StrategyBoosted:
		var m Boosted
		if err := json.Unmarshal(envelope.Model, &m); err != nil {
			return nil, fmt.Errorf("decode boosted model: %w", err)
		}
		return &m, nil
	case StrategyLogistic:
		var m Logistic
		if err := json.Unmarshal(envelope.Model, &m); err != nil {
			return nil, fmt.Errorf("decode logistic model: %w", err)
		}
		return &m, nil
	case StrategyHeuristic:
		var m Heuristic
		if err := json.Unmarshal(envelope.Model, &m); err != nil {
			return nil, fmt.Errorf("decode heuristic model: %w", err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", envelope.Strategy)
	}
}
