package persist

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Store is the persistent key-value collaborator. Get reports absence via the
// bool instead of an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Source is a piece of observable state the adapter mirrors into the store.
type Source interface {
	Watch(fn func()) (cancel func())
	MarshalState() ([]byte, error)
}

// Adapter writes a source's marshaled state under a fixed key on every
// change notification. One adapter per (source, key) binding; the scope
// manager detaches it before re-pointing state at another key.
type Adapter struct {
	store  Store
	key    string
	source Source
	log    *zap.Logger
	cancel func()
}

func Attach(store Store, key string, source Source, log *zap.Logger) *Adapter {
	a := &Adapter{
		store:  store,
		key:    key,
		source: source,
		log:    log,
	}
	a.cancel = source.Watch(a.flush)
	return a
}

func (a *Adapter) flush() {
	data, err := a.source.MarshalState()
	if err != nil {
		a.log.Warn("failed to marshal state", zap.String("key", a.key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.store.Set(ctx, a.key, string(data)); err != nil {
		a.log.Warn("failed to persist state", zap.String("key", a.key), zap.Error(err))
	}
}

// Detach stops mirroring. Safe to call more than once.
func (a *Adapter) Detach() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Load reads and decodes the value stored under key. Missing keys, read
// errors and undecodable payloads all yield the fallback; corruption is
// tolerated, never propagated.
func Load[T any](ctx context.Context, store Store, key string, fallback T) T {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return fallback
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback
	}

	return v
}
