// Package lineup defines the players and lineups handed to the renderer.
//
// A [Lineup] is an unordered set of [Player] values returned by the lineup
// service for one render request. It is request-scoped: created from a
// service response, consumed once by layout and composition, then dropped.
//
// Player ids are the stable sort key used everywhere downstream. Ranks,
// composition order and captain tie-breaks all derive from ascending id, so
// the order in which players appear in a Lineup never matters.
package lineup

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
)

// Position is a player's role on the field.
type Position string

// Positions understood by the formation layout.
const (
	Goalkeeper Position = "goalkeeper"
	Fullback   Position = "fullback"
	Defender   Position = "defender"
	Midfielder Position = "midfielder"
	Forward    Position = "forward"
	Coach      Position = "coach"
)

// Positions lists every position in field order, back to front.
var Positions = []Position{Goalkeeper, Fullback, Defender, Midfielder, Forward, Coach}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	return slices.Contains(Positions, p)
}

// Roster tells whether a player starts or sits on the bench.
type Roster string

// Roster types. Their string values are part of the plot key.
const (
	Starters Roster = "starters"
	Bench    Roster = "bench"
)

// Valid reports whether r is a known roster type.
func (r Roster) Valid() bool {
	return r == Starters || r == Bench
}

// Player is one selected player as returned by the lineup service.
type Player struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Roster   Roster   `json:"type"`
	Price    float64  `json:"price"`
	Points   float64  `json:"points"`
	Photo    string   `json:"photo"`
	Emblem   string   `json:"club_badge"`
}

// Lineup is an unordered collection of players for one render.
type Lineup []Player

// Validate checks ids are unique and enums are known.
func (l Lineup) Validate() error {
	seen := make(map[int]bool, len(l))
	for _, p := range l {
		if seen[p.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate player id %d", p.ID)
		}
		seen[p.ID] = true
		if !p.Position.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "player %d: unknown position %q", p.ID, p.Position)
		}
		if !p.Roster.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "player %d: unknown roster type %q", p.ID, p.Roster)
		}
	}
	return nil
}

// Sorted returns a copy of l ordered by ascending id.
func (l Lineup) Sorted() Lineup {
	out := slices.Clone(l)
	slices.SortFunc(out, func(a, b Player) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Count returns the number of players on the given roster.
func (l Lineup) Count(r Roster) int {
	n := 0
	for _, p := range l {
		if p.Roster == r {
			n++
		}
	}
	return n
}

// Output is the decoded "output" payload of the lineup service.
// Older deployments send starters under "players"; both keys are accepted.
type Output struct {
	Starters []Player `json:"starters"`
	Players  []Player `json:"players,omitempty"`
	Bench    []Player `json:"bench"`
}

// Lineup merges both collections and tags each player with its roster type.
func (o Output) Lineup() Lineup {
	starters := o.Starters
	if len(starters) == 0 {
		starters = o.Players
	}
	out := make(Lineup, 0, len(starters)+len(o.Bench))
	for _, p := range starters {
		p.Roster = Starters
		out = append(out, p)
	}
	for _, p := range o.Bench {
		p.Roster = Bench
		out = append(out, p)
	}
	return out
}

// Decode parses an encoded service output into a validated lineup.
func Decode(data []byte) (Lineup, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode lineup output: %w", err)
	}
	l := out.Lineup()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
