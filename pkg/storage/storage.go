// Package storage keeps a history of finished renders.
//
// This package defines the [Store] interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - file: JSON files on disk for the CLI
//   - mongo: MongoDB for the HTTP server (see the mongo subpackage)
//
// # Usage
//
//	store := storage.NewMemoryStore()
//
//	r := storage.NewRender(result.Lineup, "cartola", result.Layout.Captains, result.Artifacts)
//	if err := store.Save(ctx, r); err != nil {
//	    return err
//	}
//
//	got, err := store.Get(ctx, r.ID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // unknown id
//	}
//
// Render ids are random UUIDs, so they can be handed out as permalinks.
package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a render does not exist.
	ErrNotFound = errors.New("render not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid render id")
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Render is one stored render.
type Render struct {
	ID         string            `json:"id" bson:"_id"`
	Game       string            `json:"game" bson:"game"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	Players    int               `json:"players" bson:"players"`
	Captains   []int             `json:"captains,omitempty" bson:"captains,omitempty"`
	LineupHash string            `json:"lineup_hash,omitempty" bson:"lineup_hash,omitempty"`
	Artifacts  map[string][]byte `json:"artifacts,omitempty" bson:"artifacts,omitempty"`
}

// Formats returns the stored artifact formats, sorted.
func (r *Render) Formats() []string {
	return slices.Sorted(maps.Keys(r.Artifacts))
}

// Summary returns a copy of r without artifact bytes.
func (r *Render) Summary() Render {
	s := *r
	s.Captains = slices.Clone(r.Captains)
	s.Artifacts = nil
	return s
}

// Store is the interface for render history backends.
type Store interface {
	// Save stores a render. The render's ID must be set.
	Save(ctx context.Context, r *Render) error

	// Get retrieves a render by ID.
	// Returns ErrNotFound if the render doesn't exist.
	Get(ctx context.Context, id string) (*Render, error)

	// List returns the most recent renders, newest first, without artifact
	// bytes.
	List(ctx context.Context, limit int) ([]Render, error)

	// Close releases the backend's resources.
	Close() error
}

// NewRender creates a render with a fresh id.
func NewRender(l lineup.Lineup, game string, captains []int, artifacts map[string][]byte) *Render {
	return &Render{
		ID:        uuid.NewString(),
		Game:      game,
		CreatedAt: time.Now().UTC(),
		Players:   len(l),
		Captains:  slices.Clone(captains),
		Artifacts: maps.Clone(artifacts),
	}
}

// ValidateID reports whether id can name a render.
func ValidateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return ErrInvalidID
	}
	return nil
}

// newestFirst orders renders by descending creation time, then id.
func newestFirst(a, b Render) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
