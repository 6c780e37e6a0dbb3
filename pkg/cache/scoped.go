package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "palpiteiro:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) LineupKey(lineupJSON []byte) string {
	return k.prefix + k.inner.LineupKey(lineupJSON)
}

func (k *ScopedKeyer) AssetKey(url string) string {
	return k.prefix + k.inner.AssetKey(url)
}

func (k *ScopedKeyer) ArtifactKey(lineupHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(lineupHash, opts)
}
