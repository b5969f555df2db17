package scorer_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/scorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, artifact map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "route_predictor.json")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

// single linear layer picking out the tolls and floods flags, with an
// identity scaler
func identityArtifact() map[string]interface{} {
	weights := make([][]float64, 2)
	weights[0] = []float64{0, 0, 0, 0, 1, 0, 0, 0} // path_cost = avoid_tolls
	weights[1] = []float64{0, 0, 0, 0, 0, 0, 1, 0} // path_safety = avoid_floods

	return map[string]interface{}{
		"scaler": map[string]interface{}{
			"mean": []float64{0, 0, 0, 0, 0, 0, 0, 0},
			"std":  []float64{1, 1, 1, 1, 1, 1, 1, 1},
		},
		"layers": []interface{}{
			map[string]interface{}{
				"weights":    weights,
				"bias":       []float64{0.5, 0.25},
				"activation": "linear",
			},
		},
	}
}

func TestLoadModelAndScore(t *testing.T) {
	path := writeArtifact(t, identityArtifact())

	model, err := scorer.LoadModel(path)
	require.NoError(t, err)

	origin := datastructure.NewCoordinate(19.0, 73.0)
	dest := datastructure.NewCoordinate(20.0, 74.0)

	res, err := model.Score(origin, dest, datastructure.AvoidancePreferences{Tolls: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, res.PathCost, 1e-9)
	assert.InDelta(t, 0.25, res.PathSafety, 1e-9)

	res, err = model.Score(origin, dest, datastructure.AvoidancePreferences{Floods: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.PathCost, 1e-9)
	assert.InDelta(t, 1.25, res.PathSafety, 1e-9)
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := scorer.LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadModelBadShape(t *testing.T) {
	artifact := identityArtifact()
	artifact["scaler"] = map[string]interface{}{
		"mean": []float64{0, 0},
		"std":  []float64{1, 1},
	}
	path := writeArtifact(t, artifact)

	_, err := scorer.LoadModel(path)
	assert.Error(t, err)
}

func TestLoadModelWrongOutputSize(t *testing.T) {
	artifact := identityArtifact()
	artifact["layers"] = []interface{}{
		map[string]interface{}{
			"weights":    [][]float64{{0, 0, 0, 0, 0, 0, 0, 1}},
			"bias":       []float64{0},
			"activation": "linear",
		},
	}
	path := writeArtifact(t, artifact)

	_, err := scorer.LoadModel(path)
	assert.Error(t, err)
}

func TestScoreWithoutLoadedModel(t *testing.T) {
	var m *scorer.ModelScorer

	_, err := m.Score(datastructure.NewCoordinate(19.0, 73.0),
		datastructure.NewCoordinate(20.0, 74.0), datastructure.AvoidancePreferences{})
	assert.ErrorIs(t, err, scorer.ErrUnavailable)

	_, err = (&scorer.ModelScorer{}).Score(datastructure.NewCoordinate(19.0, 73.0),
		datastructure.NewCoordinate(20.0, 74.0), datastructure.AvoidancePreferences{})
	assert.ErrorIs(t, err, scorer.ErrUnavailable)
}
