package assets

import (
	"fmt"
	"strings"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
)

// Kind names an asset slot.
type Kind string

const (
	KindPhoto  Kind = "photo"
	KindEmblem Kind = "emblem"
)

// Assets holds the downloaded images of one player.
type Assets struct {
	PlayerID int
	Photo    []byte
	Emblem   []byte

	// PhotoErr and EmblemErr record download failures absorbed under the
	// Degrade policy.
	PhotoErr  error
	EmblemErr error

	// PlaceholderEmblem is set when Emblem was generated rather than
	// downloaded.
	PlaceholderEmblem bool
}

// Degraded reports whether any download failed.
func (a Assets) Degraded() bool {
	return a.PhotoErr != nil || a.EmblemErr != nil
}

// FailurePolicy decides how download failures propagate.
type FailurePolicy int

const (
	// Degrade keeps failures local to the player.
	Degrade FailurePolicy = iota
	// FailFast aborts the whole fetch on the first failure.
	FailFast
)

func (p FailurePolicy) String() string {
	switch p {
	case Degrade:
		return "degrade"
	case FailFast:
		return "fail-fast"
	}
	return fmt.Sprintf("FailurePolicy(%d)", int(p))
}

// ParseFailurePolicy parses "degrade" or "fail-fast".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "degrade", "":
		return Degrade, nil
	case "fail-fast", "failfast":
		return FailFast, nil
	}
	return Degrade, errors.New(errors.ErrCodeInvalidInput, "invalid failure policy: %q (must be one of: degrade, fail-fast)", s)
}
