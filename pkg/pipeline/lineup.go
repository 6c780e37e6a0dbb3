package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

// LineupSource produces a lineup for a game request.
// [lineupapi.Client] is the production implementation.
//
// [lineupapi.Client]: github.com/palpiteiro/palpiteiro/pkg/integrations/lineupapi.Client
type LineupSource interface {
	FetchLineup(ctx context.Context, req mode.Request) (lineup.Lineup, error)
}

// BuildRequest returns the lineup service request for validated options.
func BuildRequest(opts Options) (mode.Request, error) {
	if err := opts.ValidateForLineup(); err != nil {
		return mode.Request{}, err
	}
	s, err := opts.SchemeFor()
	if err != nil {
		return mode.Request{}, err
	}
	return mode.NewRequest(opts.Mode, s)
}

// ReadLineup decodes a lineup document. Both the service's output object
// ({"starters": [...], "bench": [...]}) and a plain player array with
// explicit "type" fields are accepted.
func ReadLineup(r io.Reader) (lineup.Lineup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read lineup")
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var l lineup.Lineup
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode lineup")
		}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		return l, nil
	}
	l, err := lineup.Decode(data)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "decode lineup")
		}
		return nil, err
	}
	return l, nil
}

// ReadLineupFile reads a lineup document from disk.
func ReadLineupFile(path string) (lineup.Lineup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open lineup")
	}
	defer f.Close()
	return ReadLineup(f)
}

// canonicalLineup encodes l sorted by id, so equal lineups hash equally.
func canonicalLineup(l lineup.Lineup) ([]byte, error) {
	return json.Marshal(l.Sorted())
}
