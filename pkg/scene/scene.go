package scene

import (
	"image"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Overlay geometry, as fractions of the canvas axes.
const (
	PhotoSize       = 0.15
	EmblemSize      = 0.075
	EmblemOffsetX   = 0.01
	EmblemOffsetY   = -0.015
	FallbackSize    = PhotoSize
	HitTargetRadius = 25 // pixels
)

// Anchor tells which point of an overlay its (X, Y) designates.
type Anchor string

const (
	AnchorCenter  Anchor = "center"
	AnchorTopLeft Anchor = "top-left"
)

// Overlay is an image placed on the canvas.
type Overlay struct {
	PlayerID int     `json:"player_id"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Anchor   Anchor  `json:"anchor"`

	Image image.Image `json:"-"`
	// Data holds the original encoded bytes and Format their image format
	// ("png", "jpeg", ...), so vector sinks can embed without re-encoding.
	Data   []byte `json:"-"`
	Format string `json:"format"`
}

// Bounds returns the overlay box as normalized (left, bottom, right, top).
func (o Overlay) Bounds() (left, bottom, right, top float64) {
	switch o.Anchor {
	case AnchorTopLeft:
		return o.X, o.Y - o.H, o.X + o.W, o.Y
	default:
		return o.X - o.W/2, o.Y - o.H/2, o.X + o.W/2, o.Y + o.H/2
	}
}

// HitTarget is an invisible interactive marker at a player's coordinate.
type HitTarget struct {
	PlayerID int     `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	// Label is always shown below the marker.
	Label string `json:"label"`
	// Hover is shown on pointer hover.
	Hover   string `json:"hover"`
	Captain bool   `json:"captain,omitempty"`
}

// Background is the layer stretched under all overlays.
type Background struct {
	Image  image.Image `json:"-"`
	Data   []byte      `json:"-"`
	Format string      `json:"format,omitempty"`
	// Source describes where the image came from (a path, or "pitch").
	Source string `json:"source,omitempty"`
}

// Scene is a composed field diagram.
type Scene struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Background Background  `json:"background"`
	Overlays   []Overlay   `json:"overlays"`
	HitTargets []HitTarget `json:"hit_targets"`
	// Fixed disables pan and zoom in interactive sinks.
	Fixed bool `json:"fixed"`
}

// PixelX converts a normalized x to canvas pixels.
func (s *Scene) PixelX(x float64) float64 { return x * float64(s.Width) }

// PixelY converts a normalized y (growing upward) to canvas pixels
// (growing downward).
func (s *Scene) PixelY(y float64) float64 { return (1 - y) * float64(s.Height) }

// OverlaysFor returns the overlays of one player in drawing order.
func (s *Scene) OverlaysFor(playerID int) []Overlay {
	var out []Overlay
	for _, o := range s.Overlays {
		if o.PlayerID == playerID {
			out = append(out, o)
		}
	}
	return out
}
