package store

import (
	"context"
	"slices"

	"github.com/derktes/ir-remote/remote"
)

// MemoryBackend keeps configurations for the lifetime of the process.
type MemoryBackend struct {
	configs map[string]remote.Config
	order   []string
}

// NewMemoryBackend returns a backend preloaded with seed.
func NewMemoryBackend(seed ...remote.Config) *MemoryBackend {
	b := &MemoryBackend{configs: make(map[string]remote.Config)}
	for _, cfg := range seed {
		_ = b.Put(context.Background(), cfg)
	}
	return b
}

func (b *MemoryBackend) Load(context.Context) ([]remote.Config, error) {
	out := make([]remote.Config, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.configs[id].Clone())
	}
	return out, nil
}

func (b *MemoryBackend) Put(_ context.Context, cfg remote.Config) error {
	if _, ok := b.configs[cfg.ID]; !ok {
		b.order = append(b.order, cfg.ID)
	}
	b.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	delete(b.configs, id)
	b.order = slices.DeleteFunc(b.order, func(v string) bool { return v == id })
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
