package cache

import (
	"fmt"
	"strings"
)

// ArtifactKeyOpts holds everything besides the lineup that changes an
// artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Game       string `json:"game,omitempty"`
	Positions  string `json:"positions,omitempty"` // position map fingerprint
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Captain    string `json:"captain"`
	Background string `json:"background,omitempty"`
	Tooltips   bool   `json:"tooltips,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LineupKey identifies a lineup by content, independent of player order.
	LineupKey(lineupJSON []byte) string
	// AssetKey identifies a downloaded asset by URL.
	AssetKey(url string) string
	// ArtifactKey identifies a rendered output of a lineup.
	ArtifactKey(lineupHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LineupKey hashes the canonical lineup encoding. Callers must encode the
// lineup sorted by player id.
func (DefaultKeyer) LineupKey(lineupJSON []byte) string {
	return "lineup:" + Hash(lineupJSON)
}

// AssetKey returns "asset:<sha256(url)>".
func (DefaultKeyer) AssetKey(url string) string {
	return "asset:" + Hash([]byte(strings.TrimSpace(url)))
}

// ArtifactKey combines the lineup hash with the key options.
func (DefaultKeyer) ArtifactKey(lineupHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), lineupHash, opts)
}

var _ Keyer = DefaultKeyer{}
