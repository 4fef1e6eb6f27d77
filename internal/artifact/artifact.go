// Package artifact persists and restores trained model bundles. A bundle
// is written once per training run and read-only afterwards: model,
// scaler, the full feature panel snapshot used for inference lookups, and
// metadata describing what was trained.
package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/features"
	"tariffscope/internal/model"
)

// File names inside the artifact directory.
const (
	modelFile    = "model.json"
	scalerFile   = "scaler.json"
	panelFile    = "feature_panel.csv"
	metadataFile = "metadata.json"
)

// TrainingStats captures the run that produced the bundle.
type TrainingStats struct {
	Rows      int      `json:"rows"`
	NPositive int      `json:"n_positive"`
	PRAUC     *float64 `json:"pr_auc"`
}

// Metadata describes a bundle. FeatureColumns records the exact ordered
// schema the model was trained against.
type Metadata struct {
	Strategy       string        `json:"strategy"`
	FeatureColumns []string      `json:"feature_columns"`
	TrainingStats  TrainingStats `json:"training_stats"`
	HorizonDays    int           `json:"horizon_days"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Bundle is a complete trained artifact.
type Bundle struct {
	Strategy model.Strategy
	Scaler   *model.Scaler
	Panel    *features.Panel
	Meta     Metadata
}

// New assembles a bundle from a training result and its feature panel.
func New(res *model.Result, panel *features.Panel, horizonDays int) *Bundle {
	var prAUC *float64
	if !math.IsNaN(res.PRAUC) {
		v := res.PRAUC
		prAUC = &v
	}
	return &Bundle{
		Strategy: res.Strategy,
		Scaler:   res.Scaler,
		Panel:    panel,
		Meta: Metadata{
			Strategy:       res.Strategy.Name(),
			FeatureColumns: res.Columns,
			TrainingStats: TrainingStats{
				Rows:      res.NRows,
				NPositive: res.NPositive,
				PRAUC:     prAUC,
			},
			HorizonDays: horizonDays,
			CreatedAt:   time.Now().UTC(),
		},
	}
}

// Save writes all four files atomically: each lands under a temporary
// name in the target directory and renames into place, so a crashed run
// never leaves a half-written file behind.
func Save(dir string, b *Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	modelData, err := model.MarshalStrategy(b.Strategy)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	scalerData, err := json.MarshalIndent(b.Scaler, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scaler: %w", err)
	}
	metaData, err := json.MarshalIndent(b.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	panelData, err := encodePanelCSV(b.Panel)
	if err != nil {
		return fmt.Errorf("encode feature panel: %w", err)
	}

	// Metadata renames into place last, after the files it describes. A
	// reader that keys off metadata.json therefore never observes a newer
	// metadata beside older model, scaler or panel files.
	files := []struct {
		name string
		data []byte
	}{
		{modelFile, modelData},
		{scalerFile, scalerData},
		{panelFile, panelData},
		{metadataFile, metaData},
	}
	for _, f := range files {
		if err := writeAtomic(filepath.Join(dir, f.name), f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// Load reads a bundle and verifies schema parity: the column order in the
// metadata, the scaler and the panel snapshot must all match the schema
// the assembler produces today. Drift is a fatal contract violation.
func Load(dir string) (*Bundle, error) {
	metaData, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	modelData, err := os.ReadFile(filepath.Join(dir, modelFile))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	strategy, err := model.UnmarshalStrategy(modelData)
	if err != nil {
		return nil, err
	}

	scalerData, err := os.ReadFile(filepath.Join(dir, scalerFile))
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var scaler model.Scaler
	if err := json.Unmarshal(scalerData, &scaler); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}

	panelData, err := os.ReadFile(filepath.Join(dir, panelFile))
	if err != nil {
		return nil, fmt.Errorf("read feature panel: %w", err)
	}
	panel, err := decodePanelCSV(panelData)
	if err != nil {
		return nil, fmt.Errorf("decode feature panel: %w", err)
	}

	want := features.Columns()
	if !equalColumns(meta.FeatureColumns, want) {
		return nil, apperrors.NewSchemaMismatch(want, meta.FeatureColumns)
	}
	if !equalColumns(scaler.Columns, want) {
		return nil, apperrors.NewSchemaMismatch(want, scaler.Columns)
	}
	if !equalColumns(panel.Columns, want) {
		return nil, apperrors.NewSchemaMismatch(want, panel.Columns)
	}
	if meta.Strategy != strategy.Name() {
		return nil, fmt.Errorf("metadata strategy %q does not match model %q", meta.Strategy, strategy.Name())
	}

	return &Bundle{
		Strategy: strategy,
		Scaler:   &scaler,
		Panel:    panel,
		Meta:     meta,
	}, nil
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
