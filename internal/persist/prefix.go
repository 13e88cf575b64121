package persist

import "context"

type prefixStore struct {
	inner  Store
	prefix string
}

// Prefixed namespaces every key of the returned store, so independent
// component graphs can share one backing store without colliding.
func Prefixed(store Store, prefix string) Store {
	return &prefixStore{inner: store, prefix: prefix}
}

func (p *prefixStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixStore) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}
