package formation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

// Badge offsets relative to a player's coordinate.
const (
	BadgeOffsetX = 0.025
	BadgeOffsetY = -0.075
)

// CaptainPrefix marks a captain's display name.
const CaptainPrefix = "(C) "

// CaptainPolicy selects how captains are marked.
type CaptainPolicy int

const (
	// CaptainNone marks nobody.
	CaptainNone CaptainPolicy = iota
	// CaptainAllTies marks every player whose points equal the lineup-wide
	// maximum, starters and bench alike.
	CaptainAllTies
	// CaptainSingle marks exactly one player: the lowest id among those tied
	// at the maximum.
	CaptainSingle
)

var captainPolicyNames = map[CaptainPolicy]string{
	CaptainNone:    "none",
	CaptainAllTies: "ties",
	CaptainSingle:  "single",
}

func (p CaptainPolicy) String() string {
	if s, ok := captainPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("CaptainPolicy(%d)", int(p))
}

// ParseCaptainPolicy parses "none", "ties" or "single".
func ParseCaptainPolicy(s string) (CaptainPolicy, error) {
	for p, name := range captainPolicyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return CaptainNone, errors.New(errors.ErrCodeInvalidInput, "invalid captain policy: %q (must be one of: none, ties, single)", s)
}

// Placement is a player resolved to a field position.
type Placement struct {
	Player      lineup.Player `json:"player"`
	Rank        int           `json:"rank"`
	PlotKey     string        `json:"plot_key"`
	Coord       Coord         `json:"coord"`
	Badge       Coord         `json:"badge"`
	Captain     bool          `json:"captain,omitempty"`
	DisplayName string        `json:"display_name"`
}

// Result is a laid-out lineup.
type Result struct {
	// Placements are ordered by ascending player id.
	Placements []Placement `json:"placements"`
	// Captains holds the ids of captain-marked players, ascending.
	Captains []int `json:"captains,omitempty"`
}

// Placement returns the placement of the player with the given id.
func (r *Result) Placement(id int) (Placement, bool) {
	i, ok := slices.BinarySearchFunc(r.Placements, id, func(p Placement, id int) int {
		return cmp.Compare(p.Player.ID, id)
	})
	if !ok {
		return Placement{}, false
	}
	return r.Placements[i], true
}

// Layout ranks every player inside its (position, roster) group by ascending
// id, resolves each to a coordinate through pm, and applies the captain
// policy.
//
// Layout never drops or guesses a placement: if a group holds more players
// than pm defines slots for, it returns a CONFIG error naming the missing
// plot key. The result depends only on the lineup contents, not on the order
// of players in l.
func Layout(l lineup.Lineup, pm *PositionMap, policy CaptainPolicy) (*Result, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	// Sorting the whole lineup once makes every group sorted by id as well.
	sorted := l.Sorted()
	ranks := make(map[group]int)

	placements := make([]Placement, 0, len(sorted))
	for _, p := range sorted {
		g := group{p.Roster, p.Position}
		ranks[g]++
		rank := ranks[g]

		key := PlotKey(p.Roster, p.Position, rank)
		coord, ok := pm.Lookup(key)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfig,
				"position map has no entry for %q (group defines %d slot(s), player %d needs rank %d)",
				key, pm.MaxRank(p.Roster, p.Position), p.ID, rank)
		}

		placements = append(placements, Placement{
			Player:      p,
			Rank:        rank,
			PlotKey:     key,
			Coord:       coord,
			Badge:       coord.Add(BadgeOffsetX, BadgeOffsetY),
			DisplayName: p.Name,
		})
	}

	res := &Result{Placements: placements}
	markCaptains(res, policy)
	return res, nil
}

// markCaptains applies policy in place. Placements must be sorted by id.
func markCaptains(res *Result, policy CaptainPolicy) {
	if policy == CaptainNone || len(res.Placements) == 0 {
		return
	}

	best := res.Placements[0].Player.Points
	for _, p := range res.Placements[1:] {
		best = max(best, p.Player.Points)
	}

	for i := range res.Placements {
		p := &res.Placements[i]
		if p.Player.Points != best {
			continue
		}
		p.Captain = true
		p.DisplayName = CaptainPrefix + p.Player.Name
		res.Captains = append(res.Captains, p.Player.ID)
		if policy == CaptainSingle {
			return
		}
	}
}
