package scorer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/util"
)

const (
	featureCount = 8
	outputCount  = 2
)

type scalerParams struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

type denseLayer struct {
	Weights    [][]float64 `json:"weights"` // [out][in]
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"` // "relu" or "linear"
}

type modelArtifact struct {
	Scaler scalerParams `json:"scaler"`
	Layers []denseLayer `json:"layers"`
}

// ModelScorer runs a trained feed-forward model over 8 standardized
// features: origin lat/lng, destination lat/lng and the four avoidance
// flags. The artifact is produced by the out-of-band training pipeline
// and loaded here as a whole unit.
type ModelScorer struct {
	artifact modelArtifact
	path     string
}

// LoadModel reads and validates a model artifact. Either the whole
// artifact loads or an error is returned, never a partially usable
// scorer.
func LoadModel(path string) (*ModelScorer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	if err := validateArtifact(artifact); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	return &ModelScorer{artifact: artifact, path: path}, nil
}

func validateArtifact(artifact modelArtifact) error {
	if len(artifact.Scaler.Mean) != featureCount || len(artifact.Scaler.Std) != featureCount {
		return fmt.Errorf("scaler expects %d features, got mean=%d std=%d",
			featureCount, len(artifact.Scaler.Mean), len(artifact.Scaler.Std))
	}
	if len(artifact.Layers) == 0 {
		return fmt.Errorf("artifact has no layers")
	}

	in := featureCount
	for i, layer := range artifact.Layers {
		if len(layer.Weights) == 0 {
			return fmt.Errorf("layer %d has no weights", i)
		}
		for _, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("layer %d expects %d inputs, got %d", i, in, len(row))
			}
		}
		if len(layer.Bias) != len(layer.Weights) {
			return fmt.Errorf("layer %d bias size %d != output size %d", i, len(layer.Bias), len(layer.Weights))
		}
		in = len(layer.Weights)
	}
	if in != outputCount {
		return fmt.Errorf("final layer must output %d values, got %d", outputCount, in)
	}
	return nil
}

func (m *ModelScorer) Path() string {
	return m.path
}

func (m *ModelScorer) Score(origin, destination datastructure.Coordinate,
	avoid datastructure.AvoidancePreferences) (datastructure.ScoringResult, error) {

	if m == nil || len(m.artifact.Layers) == 0 {
		return datastructure.ScoringResult{}, ErrUnavailable
	}

	features := []float64{
		origin.Lat, origin.Lng,
		destination.Lat, destination.Lng,
		util.BoolToFloat(avoid.Tolls),
		util.BoolToFloat(avoid.Highways),
		util.BoolToFloat(avoid.Floods),
		util.BoolToFloat(avoid.Debris),
	}

	x := make([]float64, featureCount)
	for i := range features {
		std := m.artifact.Scaler.Std[i]
		if std == 0 {
			std = 1
		}
		x[i] = (features[i] - m.artifact.Scaler.Mean[i]) / std
	}

	for _, layer := range m.artifact.Layers {
		x = forward(layer, x)
	}

	return datastructure.ScoringResult{
		PathCost:   x[0],
		PathSafety: x[1],
	}, nil
}

func forward(layer denseLayer, in []float64) []float64 {
	out := make([]float64, len(layer.Weights))
	for i, row := range layer.Weights {
		sum := layer.Bias[i]
		for j, w := range row {
			sum += w * in[j]
		}
		if layer.Activation == "relu" && sum < 0 {
			sum = 0
		}
		out[i] = sum
	}
	return out
}
