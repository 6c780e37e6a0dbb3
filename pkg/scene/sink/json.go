package sink

import (
	"encoding/json"

	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	layout *formation.Result
	game   string
}

// WithJSONLayout includes the placements (ranks, plot keys, captains) that
// produced the scene.
func WithJSONLayout(r *formation.Result) JSONOption {
	return func(j *jsonRenderer) { j.layout = r }
}

// WithJSONGame records the game mode identifier.
func WithJSONGame(game string) JSONOption {
	return func(j *jsonRenderer) { j.game = game }
}

type jsonOutput struct {
	Game       string                `json:"game,omitempty"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Fixed      bool                  `json:"fixed"`
	Background string                `json:"background,omitempty"`
	Overlays   []scene.Overlay       `json:"overlays"`
	HitTargets []scene.HitTarget     `json:"hit_targets"`
	Placements []formation.Placement `json:"placements,omitempty"`
	Captains   []int                 `json:"captains,omitempty"`
}

// RenderJSON exports the scene geometry. Image bytes are left out; each
// overlay carries its kind, box and format.
func RenderJSON(s *scene.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Game:       r.game,
		Width:      s.Width,
		Height:     s.Height,
		Fixed:      s.Fixed,
		Background: s.Background.Source,
		Overlays:   s.Overlays,
		HitTargets: s.HitTargets,
	}
	if r.layout != nil {
		out.Placements = r.layout.Placements
		out.Captains = r.layout.Captains
	}
	if out.Overlays == nil {
		out.Overlays = []scene.Overlay{}
	}
	if out.HitTargets == nil {
		out.HitTargets = []scene.HitTarget{}
	}
	return json.MarshalIndent(out, "", "  ")
}
