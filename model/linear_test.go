package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicScore(t *testing.T) {
	m, err := NewLinearModel(0, HeuristicWeights(), "")
	require.NoError(t, err)
	assert.Equal(t, "linear", m.Name())

	tests := []struct {
		name     string
		features map[string]float64
		want     float64
	}{
		{"all terms", map[string]float64{FeatureCategoryMatch: 1, FeatureLevelMatch: 1, FeatureRating: 4.7, FeatureRecent: 1}, 122},
		{"rating only", map[string]float64{FeatureRating: 4.5}, 45},
		{"decayed category", map[string]float64{FeatureCategoryMatch: 0.5, FeatureRating: 4.0}, 65},
		{"unknown feature ignored", map[string]float64{"ctr": 9, FeatureRating: 4.0}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(tt.features)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSigmoidLink(t *testing.T) {
	m, err := NewLinearModel(0.5, map[string]float64{"x": 1}, LinkSigmoid)
	require.NoError(t, err)
	assert.Equal(t, "lr", m.Name())
	got, err := m.Predict(map[string]float64{"x": 1})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.5)), got, 1e-12)
}

func TestUnknownLink(t *testing.T) {
	_, err := NewLinearModel(0, nil, "softmax")
	assert.Error(t, err)
}

func TestLoadLinearModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bias":1,"weights":{"rating":2}}`), 0o600))

	m, err := LoadLinearModel(path)
	require.NoError(t, err)
	got, err := m.Predict(map[string]float64{FeatureRating: 4})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, got, 1e-12)

	_, err = LoadLinearModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
