package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. The CLI scopes keys by
// server base URL so two servers sharing a Redis or Mongo backend never see
// each other's job outcomes.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ChartKey(dataHash string, opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(dataHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(chartHash, opts)
}

func (k *ScopedKeyer) JobKey(jobID string) string {
	return k.prefix + k.inner.JobKey(jobID)
}
