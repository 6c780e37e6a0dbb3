package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileStore keeps renders as JSON files in a directory, for CLI use.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.local/share/palpiteiro/renders/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func defaultDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "palpiteiro", "renders"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "palpiteiro", "renders"), nil
}

func (s *FileStore) renderPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, r *Render) error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal render: %w", err)
	}
	if err := os.WriteFile(s.renderPath(r.ID), data, 0o600); err != nil {
		return fmt.Errorf("write render file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Render, error) {
	if err := ValidateID(id); err != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.renderPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read render file: %w", err)
	}
	var r Render
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse render: %w", err)
	}
	return &r, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Render, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read render dir: %w", err)
	}

	var out []Render
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var r Render
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		out = append(out, r.Summary())
	}
	slices.SortFunc(out, newestFirst)
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for render files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
