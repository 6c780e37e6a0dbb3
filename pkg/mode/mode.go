// Package mode defines the supported game modes and the lineup request each
// of them produces.
//
// A [Mode] is a closed set of variants: [Standard] (the "cartola" season
// game) and [Express] (the "cartola-express" daily game). Each variant
// carries only the settings that apply to it, so a dropout rate on a
// standard game or a budget on an express game cannot be expressed.
//
// Modes never mutate shared state. The formation they request is computed
// per call from an immutable [Scheme] value.
package mode

import (
	"strings"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
)

// Game identifiers sent to the lineup service.
const (
	GameStandard = "cartola"
	GameExpress  = "cartola-express"
)

const (
	// DefaultBudget is the standard game's default team budget.
	DefaultBudget = 100.0

	// ExpressBudget is the fixed budget of the express game.
	ExpressBudget = 140.0

	// DefaultMaxPlayersPerClub caps how many players may come from one club.
	DefaultMaxPlayersPerClub = 5
)

// Mode is a game mode. The set of implementations is closed.
type Mode interface {
	// Game returns the identifier sent to the lineup service.
	Game() string
	// Label is the human-readable name.
	Label() string
	// Price returns the team budget sent to the lineup service.
	Price() float64
	// Bench reports whether the lineup includes reserve players.
	Bench() bool
	// Captain returns the default captain policy.
	Captain() formation.CaptainPolicy
	// Scheme adapts a base formation to the mode's constraints.
	Scheme(base Scheme) Scheme
	// Validate checks the mode's settings.
	Validate() error

	request(s Scheme) Request
}

// Standard is the season-long game with a configurable budget, a bench and
// a captain.
type Standard struct {
	Budget float64
}

func (Standard) Game() string  { return GameStandard }
func (Standard) Label() string { return "Cartola" }
func (Standard) Bench() bool   { return true }

func (m Standard) Price() float64 { return m.Budget }

func (Standard) Captain() formation.CaptainPolicy { return formation.CaptainAllTies }

func (Standard) Scheme(base Scheme) Scheme { return base }

func (m Standard) Validate() error {
	if m.Budget < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "budget must be non-negative, got %g", m.Budget)
	}
	return nil
}

func (m Standard) request(s Scheme) Request {
	return Request{
		Game:              GameStandard,
		Scheme:            s,
		Price:             m.Budget,
		MaxPlayersPerClub: DefaultMaxPlayersPerClub,
		Bench:             true,
	}
}

// Express is the daily game: fixed budget, no coach, no bench, and a
// dropout rate that randomly discards candidate players.
type Express struct {
	// Dropout is the probability in [0, 1] of discarding a candidate.
	Dropout float64
	// Date optionally pins the game day (YYYY-MM-DD).
	Date string
}

func (Express) Game() string   { return GameExpress }
func (Express) Label() string  { return "Cartola Express" }
func (Express) Bench() bool    { return false }
func (Express) Price() float64 { return ExpressBudget }

func (Express) Captain() formation.CaptainPolicy { return formation.CaptainNone }

// Scheme returns base without a coach.
func (Express) Scheme(base Scheme) Scheme {
	base.Coach = 0
	return base
}

func (m Express) Validate() error {
	if m.Dropout < 0 || m.Dropout > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "dropout must be within [0, 1], got %g", m.Dropout)
	}
	if m.Date != "" {
		return errors.ValidateDate(m.Date)
	}
	return nil
}

func (m Express) request(s Scheme) Request {
	r := Request{
		Game:              GameExpress,
		Scheme:            s,
		Price:             ExpressBudget,
		MaxPlayersPerClub: DefaultMaxPlayersPerClub,
		Dropout:           m.Dropout,
	}
	if m.Date != "" {
		date := m.Date
		r.Date = &date
	}
	return r
}

// Parse returns the mode named by s with default settings.
// Both the service identifiers and the short names "standard" and
// "express" are accepted.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case GameStandard, "standard", "":
		return Standard{Budget: DefaultBudget}, nil
	case GameExpress, "express":
		return Express{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidMode, "unknown game mode %q (must be one of: %s, %s)", s, GameStandard, GameExpress)
}

// All lists every mode with its default settings, in menu order.
func All() []Mode {
	return []Mode{Standard{Budget: DefaultBudget}, Express{}}
}
