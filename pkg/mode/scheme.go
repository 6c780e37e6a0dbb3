package mode

import (
	"strconv"
	"strings"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

// Scheme is the number of starters requested per position.
// It is a plain value: modifying a copy never affects another request.
type Scheme struct {
	Goalkeeper int `json:"goalkeeper" toml:"goalkeeper"`
	Fullback   int `json:"fullback" toml:"fullback"`
	Defender   int `json:"defender" toml:"defender"`
	Midfielder int `json:"midfielder" toml:"midfielder"`
	Forward    int `json:"forward" toml:"forward"`
	Coach      int `json:"coach" toml:"coach"`
}

// DefaultScheme returns the 4-3-3 formation with a coach.
func DefaultScheme() Scheme {
	return Scheme{
		Goalkeeper: 1,
		Fullback:   2,
		Defender:   2,
		Midfielder: 3,
		Forward:    3,
		Coach:      1,
	}
}

// Count returns the number of starters for p.
func (s Scheme) Count(p lineup.Position) int {
	switch p {
	case lineup.Goalkeeper:
		return s.Goalkeeper
	case lineup.Fullback:
		return s.Fullback
	case lineup.Defender:
		return s.Defender
	case lineup.Midfielder:
		return s.Midfielder
	case lineup.Forward:
		return s.Forward
	case lineup.Coach:
		return s.Coach
	}
	return 0
}

// With returns a copy of s with p set to n.
func (s Scheme) With(p lineup.Position, n int) Scheme {
	switch p {
	case lineup.Goalkeeper:
		s.Goalkeeper = n
	case lineup.Fullback:
		s.Fullback = n
	case lineup.Defender:
		s.Defender = n
	case lineup.Midfielder:
		s.Midfielder = n
	case lineup.Forward:
		s.Forward = n
	case lineup.Coach:
		s.Coach = n
	}
	return s
}

// Players returns the total number of starters, coach included.
func (s Scheme) Players() int {
	n := 0
	for _, p := range lineup.Positions {
		n += s.Count(p)
	}
	return n
}

// String renders s as "position=n" pairs in field order.
func (s Scheme) String() string {
	parts := make([]string, 0, len(lineup.Positions))
	for _, p := range lineup.Positions {
		parts = append(parts, string(p)+"="+strconv.Itoa(s.Count(p)))
	}
	return strings.Join(parts, ",")
}

// Validate checks every count is non-negative and that at least one
// player is requested.
func (s Scheme) Validate() error {
	for _, p := range lineup.Positions {
		if s.Count(p) < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "scheme: %s count must be non-negative, got %d", p, s.Count(p))
		}
	}
	if s.Players() == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scheme requests no players")
	}
	return nil
}

// ParseOverrides applies comma-separated "position=n" pairs to base,
// e.g. "defender=3,midfielder=4,forward=2".
func ParseOverrides(base Scheme, overrides string) (Scheme, error) {
	overrides = strings.TrimSpace(overrides)
	if overrides == "" {
		return base, nil
	}
	for _, pair := range strings.Split(overrides, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return base, errors.New(errors.ErrCodeInvalidInput, "scheme override %q: want position=count", pair)
		}
		p := lineup.Position(strings.ToLower(strings.TrimSpace(name)))
		if !p.Valid() {
			return base, errors.New(errors.ErrCodeInvalidInput, "scheme override %q: unknown position %q", pair, name)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return base, errors.New(errors.ErrCodeInvalidInput, "scheme override %q: count must be a non-negative integer", pair)
		}
		base = base.With(p, n)
	}
	return base, nil
}
