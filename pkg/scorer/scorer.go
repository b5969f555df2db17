package scorer

import (
	"errors"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
)

var (
	ErrUnavailable = errors.New("no scoring model loaded")
)

// Scorer returns a (path_cost, path_safety) pair for a routing request.
// Its output biases edge weights during search; it is consumed here,
// never trained.
type Scorer interface {
	Score(origin, destination datastructure.Coordinate,
		avoid datastructure.AvoidancePreferences) (datastructure.ScoringResult, error)
}
