package scene

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/observability"
)

// Option configures [Compose].
type Option func(*composer)

type composer struct {
	width, height int
	logger        *log.Logger
	ctx           context.Context
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(c *composer) {
		if width > 0 {
			c.width = width
		}
		if height > 0 {
			c.height = height
		}
	}
}

// WithLogger reports decode fallbacks through logger.
func WithLogger(l *log.Logger) Option { return func(c *composer) { c.logger = l } }

// WithContext passes ctx to observability hooks.
func WithContext(ctx context.Context) Option { return func(c *composer) { c.ctx = ctx } }

// Compose builds the scene for a laid-out lineup.
//
// Players are visited in the order of laid.Placements, which is ascending
// id. A photo that fails to decode is never drawn as a blank: the player
// falls back to the emblem alone. An emblem that fails to decode is left
// out. Neither case is an error.
func Compose(bg Background, laid *formation.Result, byPlayer map[int]assets.Assets, opts ...Option) *Scene {
	c := composer{
		width:  DefaultWidth,
		height: DefaultHeight,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	s := &Scene{
		Width:      c.width,
		Height:     c.height,
		Background: bg,
		Overlays:   make([]Overlay, 0, 2*len(laid.Placements)),
		HitTargets: make([]HitTarget, 0, len(laid.Placements)),
		Fixed:      true,
	}
	for _, p := range laid.Placements {
		s.Overlays = append(s.Overlays, c.overlays(p, byPlayer[p.Player.ID])...)
		s.HitTargets = append(s.HitTargets, HitTarget{
			PlayerID: p.Player.ID,
			X:        p.Coord.X,
			Y:        p.Coord.Y,
			Label:    p.DisplayName,
			Hover:    FormatPrice(p.Player.Price),
			Captain:  p.Captain,
		})
	}
	return s
}

func (c *composer) overlays(p formation.Placement, a assets.Assets) []Overlay {
	id := p.Player.ID
	x, y := p.Coord.X, p.Coord.Y

	emblem, emblemFormat, emblemErr := Decode(a.Emblem)
	if emblemErr != nil {
		c.logger.Warn("emblem undecodable, skipping", "player", id, "err", emblemErr)
	}

	photo, photoFormat, photoErr := Decode(a.Photo)
	if photoErr != nil {
		if a.PhotoErr == nil {
			// Downloaded but not an image.
			c.logger.Debug("photo undecodable, using emblem only", "player", id, "err", photoErr)
			observability.Asset().OnAssetDecodeFailed(c.ctx, id)
		}
		if emblemErr != nil {
			return nil
		}
		return []Overlay{{
			PlayerID: id, Kind: string(assets.KindEmblem),
			X: x, Y: y, W: FallbackSize, H: FallbackSize, Anchor: AnchorCenter,
			Image: emblem, Data: a.Emblem, Format: emblemFormat,
		}}
	}

	out := []Overlay{{
		PlayerID: id, Kind: string(assets.KindPhoto),
		X: x, Y: y, W: PhotoSize, H: PhotoSize, Anchor: AnchorCenter,
		Image: photo, Data: a.Photo, Format: photoFormat,
	}}
	if emblemErr == nil {
		out = append(out, Overlay{
			PlayerID: id, Kind: string(assets.KindEmblem),
			X: x + EmblemOffsetX, Y: y + EmblemOffsetY, W: EmblemSize, H: EmblemSize, Anchor: AnchorTopLeft,
			Image: emblem, Data: a.Emblem, Format: emblemFormat,
		})
	}
	return out
}

// FormatPrice renders a price for hover text: "$12.5", "$10.0".
func FormatPrice(price float64) string {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	if price == float64(int64(price)) {
		s = strconv.FormatFloat(price, 'f', 1, 64)
	}
	return "$" + s
}
