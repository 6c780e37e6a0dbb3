package formation

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

//go:embed positions.json
var defaultPositions []byte

// Coord is a normalized field coordinate. Both axes span [0, 1] and y grows
// upward, so the bench sits near y=0 and the forwards near y=1.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns c shifted by (dx, dy).
func (c Coord) Add(dx, dy float64) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// PlotKey builds the lookup key for a ranked player.
func PlotKey(r lineup.Roster, p lineup.Position, rank int) string {
	return fmt.Sprintf("%s-%s-%d", r, p, rank)
}

// ParsePlotKey splits a plot key into its roster, position and rank.
func ParsePlotKey(key string) (lineup.Roster, lineup.Position, int, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("plot key %q: want <roster>-<position>-<rank>", key)
	}
	r, p := lineup.Roster(parts[0]), lineup.Position(parts[1])
	if !r.Valid() {
		return "", "", 0, fmt.Errorf("plot key %q: unknown roster type %q", key, parts[0])
	}
	if !p.Valid() {
		return "", "", 0, fmt.Errorf("plot key %q: unknown position %q", key, parts[1])
	}
	rank, err := strconv.Atoi(parts[2])
	if err != nil || rank < 1 {
		return "", "", 0, fmt.Errorf("plot key %q: rank must be a positive integer", key)
	}
	return r, p, rank, nil
}

type group struct {
	roster   lineup.Roster
	position lineup.Position
}

// PositionMap maps plot keys to field coordinates.
//
// A PositionMap is built once per process and never mutated afterwards, so
// it is safe for concurrent reads by any number of renders.
type PositionMap struct {
	coords      map[string]Coord
	maxRank     map[group]int
	fingerprint string
}

// NewPositionMap validates entries and builds a PositionMap.
// Every key must parse as a plot key and every coordinate must lie in [0,1]².
func NewPositionMap(entries map[string]Coord) (*PositionMap, error) {
	pm := &PositionMap{
		coords:  make(map[string]Coord, len(entries)),
		maxRank: make(map[group]int),
	}
	for key, c := range entries {
		r, p, rank, err := ParsePlotKey(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "invalid position map")
		}
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 {
			return nil, errors.New(errors.ErrCodeConfig, "position %q out of range: (%g, %g)", key, c.X, c.Y)
		}
		pm.coords[key] = c
		g := group{r, p}
		pm.maxRank[g] = max(pm.maxRank[g], rank)
	}
	pm.fingerprint = pm.digest()
	return pm, nil
}

// digest hashes the sorted keys and their coordinates.
func (pm *PositionMap) digest() string {
	h := sha256.New()
	for _, k := range pm.Keys() {
		c := pm.coords[k]
		fmt.Fprintf(h, "%s=%s,%s;", k,
			strconv.FormatFloat(c.X, 'g', -1, 64),
			strconv.FormatFloat(c.Y, 'g', -1, 64))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LoadPositionMap decodes a JSON position table from r.
// The schema is {"<roster>-<position>-<rank>": {"x": float, "y": float}}.
func LoadPositionMap(r io.Reader) (*PositionMap, error) {
	var entries map[string]Coord
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "decode position map")
	}
	return NewPositionMap(entries)
}

// LoadPositionMapFile reads a JSON position table from disk.
func LoadPositionMapFile(path string) (*PositionMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "open position map")
	}
	defer f.Close()
	return LoadPositionMap(f)
}

var loadDefault = sync.OnceValues(func() (*PositionMap, error) {
	return LoadPositionMap(bytes.NewReader(defaultPositions))
})

// DefaultPositionMap returns the built-in table covering every slot of the
// supported schemes (up to 3 defenders, 5 midfielders, 3 forwards, one bench
// player per outfield position).
func DefaultPositionMap() *PositionMap {
	pm, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("formation: embedded position map is invalid: %v", err))
	}
	return pm
}

// Lookup returns the coordinate for key.
func (pm *PositionMap) Lookup(key string) (Coord, bool) {
	c, ok := pm.coords[key]
	return c, ok
}

// MaxRank returns the highest rank defined for a (roster, position) group,
// or 0 when the group has no slots.
func (pm *PositionMap) MaxRank(r lineup.Roster, p lineup.Position) int {
	return pm.maxRank[group{r, p}]
}

// Len returns the number of plot keys.
func (pm *PositionMap) Len() int {
	return len(pm.coords)
}

// Keys returns all plot keys in sorted order.
func (pm *PositionMap) Keys() []string {
	keys := make([]string, 0, len(pm.coords))
	for k := range pm.coords {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Fingerprint identifies the table's contents. Two maps with the same slots
// and coordinates share a fingerprint.
func (pm *PositionMap) Fingerprint() string {
	return pm.fingerprint
}
