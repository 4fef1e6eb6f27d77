package artifact

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/features"
	"tariffscope/internal/model"
)

func trainedBundle(t *testing.T, nPositive int) *Bundle {
	t.Helper()
	cols := features.Columns()
	p := &features.Panel{Columns: cols}
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		values := make([]float64, len(cols))
		for j := range values {
			values[j] = float64((i+j)%9) / 9
		}
		if i == 0 {
			values[3] = math.NaN()
		}
		y := 0
		if i < nPositive {
			y = 1
		}
		p.Rows = append(p.Rows, features.Row{
			Country: "VIETNAM", Sector: "Textiles",
			Month: start.AddDate(0, i%24, 0),
			Y:     y, SampleWeight: 1, Values: values,
		})
	}

	res, err := model.NewTrainer(nil).Train(context.Background(), p)
	require.NoError(t, err)
	return New(res, p, 90)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := trainedBundle(t, 10)

	require.NoError(t, Save(dir, b))
	for _, name := range []string{"model.json", "scaler.json", "feature_panel.csv", "metadata.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, b.Strategy.Name(), loaded.Strategy.Name())
	assert.Equal(t, b.Meta.Strategy, loaded.Meta.Strategy)
	assert.Equal(t, b.Meta.FeatureColumns, loaded.Meta.FeatureColumns)
	assert.Equal(t, b.Meta.TrainingStats.NPositive, loaded.Meta.TrainingStats.NPositive)
	assert.Equal(t, 90, loaded.Meta.HorizonDays)
	assert.Equal(t, b.Scaler.Mean, loaded.Scaler.Mean)
	require.Len(t, loaded.Panel.Rows, len(b.Panel.Rows))

	// Identical scoring after the round trip.
	x := loaded.Scaler.Transform(b.Panel.Rows[5].Values)
	assert.InDelta(t, b.Strategy.PredictProba(x), loaded.Strategy.PredictProba(x), 1e-12)

	// NaN cells survive the CSV snapshot.
	assert.True(t, math.IsNaN(loaded.Panel.Rows[0].Values[3]))
	assert.Equal(t, b.Panel.Rows[1].Values, loaded.Panel.Rows[1].Values)
}

func TestLoadDetectsSchemaDrift(t *testing.T) {
	dir := t.TempDir()
	b := trainedBundle(t, 0)

	// Simulate a stale artifact trained against an older schema.
	b.Meta.FeatureColumns = append([]string{"ghost_column"}, b.Meta.FeatureColumns...)
	require.NoError(t, Save(dir, b))

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, apperrors.IsSchemaMismatch(err))
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSaveOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	first := trainedBundle(t, 0)
	require.NoError(t, Save(dir, first))

	second := trainedBundle(t, 10)
	require.NoError(t, Save(dir, second))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, second.Strategy.Name(), loaded.Strategy.Name())
	assert.Equal(t, 10, loaded.Meta.TrainingStats.NPositive)

	// No temp leftovers.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestSaveWritesMetadataLast(t *testing.T) {
	dir := t.TempDir()
	b := trainedBundle(t, 0)

	// Block the panel rename by squatting its name with a directory. The
	// save fails there, and metadata.json must not exist yet: a reader
	// keying off metadata never sees it ahead of the files it describes.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "feature_panel.csv"), 0o755))
	require.Error(t, Save(dir, b))

	_, err := os.Stat(filepath.Join(dir, "metadata.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "model.json"))
	assert.NoError(t, err)
}

func TestMetadataPRAUCNullable(t *testing.T) {
	heuristic := trainedBundle(t, 0)
	assert.Nil(t, heuristic.Meta.TrainingStats.PRAUC)

	supervised := trainedBundle(t, 60)
	if supervised.Meta.Strategy == model.StrategyBoosted {
		require.NotNil(t, supervised.Meta.TrainingStats.PRAUC)
		assert.GreaterOrEqual(t, *supervised.Meta.TrainingStats.PRAUC, 0.0)
	}
}
