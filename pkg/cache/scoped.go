package cache

// ScopedKeyer prefixes every key of an inner Keyer, so one backend can hold
// several independent namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey returns the prefixed result key.
func (k *ScopedKeyer) ResultKey(name, version string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(name, version, opts)
}
