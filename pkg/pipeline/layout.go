package pipeline

import (
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

// ComputeLayout places every player of l on the field.
// A nil position map means [formation.DefaultPositionMap].
func ComputeLayout(l lineup.Lineup, pm *formation.PositionMap, opts Options) (*formation.Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if pm == nil {
		pm = formation.DefaultPositionMap()
	}
	return formation.Layout(l, pm, opts.captain)
}

// CheckScheme reports an INVALID_INPUT error when s asks for more starters
// at some position than pm has slots for.
func CheckScheme(s mode.Scheme, pm *formation.PositionMap) error {
	if pm == nil {
		pm = formation.DefaultPositionMap()
	}
	for _, p := range lineup.Positions {
		if n, slots := s.Count(p), pm.MaxRank(lineup.Starters, p); n > slots {
			return errors.New(errors.ErrCodeInvalidInput,
				"scheme asks for %d %s starter(s) but the position map has %d slot(s)", n, p, slots)
		}
	}
	return nil
}
