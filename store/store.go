package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/derktes/ir-remote/remote"
)

// Backend persists configurations. Implementations need not be safe for
// concurrent use; the Store serializes every call.
type Backend interface {
	// Load returns every stored configuration in insertion order.
	Load(ctx context.Context) ([]remote.Config, error)
	Put(ctx context.Context, cfg remote.Config) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Store is the configuration repository: an in-memory cache in front of a
// Backend. At most one configuration is flagged default; when none is, the
// built-in factory configuration stands in.
type Store struct {
	mu      sync.Mutex
	backend Backend
	configs map[string]remote.Config
	order   []string
	now     func() time.Time
	logger  *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every configuration from backend.
func Open(ctx context.Context, backend Backend, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		configs: make(map[string]remote.Config),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configurations: %w", err)
	}
	defaultID := ""
	for _, cfg := range loaded {
		if cfg.IsDefault {
			if defaultID != "" {
				logger.Warn("more than one default configuration stored, keeping the first",
					"default", defaultID, "ignored", cfg.ID)
				cfg.IsDefault = false
			} else {
				defaultID = cfg.ID
			}
		}
		if _, ok := s.configs[cfg.ID]; !ok {
			s.order = append(s.order, cfg.ID)
		}
		s.configs[cfg.ID] = cfg
	}
	logger.Info("configuration store opened", "configs", len(s.order), "default", s.defaultLocked().ID)
	return s, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// Get returns the configuration with id.
func (s *Store) Get(id string) (remote.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[id]; ok {
		return cfg.Clone(), true
	}
	if def := s.defaultLocked(); def.ID == id {
		return def, true
	}
	return remote.Config{}, false
}

// GetDefault returns the flagged default, or the built-in configuration.
func (s *Store) GetDefault() remote.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultLocked()
}

// defaultLocked returns the flagged entry. Without one, a stored entry with
// the built-in id stands in for the built-in configuration.
func (s *Store) defaultLocked() remote.Config {
	for _, id := range s.order {
		if cfg := s.configs[id]; cfg.IsDefault {
			return cfg.Clone()
		}
	}
	if cfg, ok := s.configs[remote.BuiltinID]; ok {
		return cfg.Clone()
	}
	return remote.Builtin()
}

// ListAll returns the default first, then the others in insertion order.
func (s *Store) ListAll() []remote.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	def := s.defaultLocked()
	out := make([]remote.Config, 0, len(s.order)+1)
	out = append(out, def)
	for _, id := range s.order {
		if id == def.ID {
			continue
		}
		out = append(out, s.configs[id].Clone())
	}
	return out
}

// Metadata lists the summaries of ListAll.
func (s *Store) Metadata() []remote.Metadata {
	all := s.ListAll()
	out := make([]remote.Metadata, len(all))
	for i, cfg := range all {
		out[i] = cfg.Metadata()
	}
	return out
}

// Save inserts or replaces cfg and returns the stored value. updated_at is
// refreshed; created_at is set when missing. Saving a default demotes the
// previous one.
func (s *Store) Save(ctx context.Context, cfg remote.Config) (remote.Config, error) {
	if strings.TrimSpace(cfg.ID) == "" {
		return remote.Config{}, ErrInvalidID
	}
	if err := cfg.Validate(); err != nil {
		return remote.Config{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := remote.Normalize(s.now())
	cfg = cfg.Clone()
	if cfg.Keys == nil {
		cfg.Keys = remote.Catalog{}
	}
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	} else {
		cfg.CreatedAt = remote.Normalize(cfg.CreatedAt)
	}

	var demoted []remote.Config
	if cfg.IsDefault {
		for _, id := range s.order {
			prev := s.configs[id]
			if id == cfg.ID || !prev.IsDefault {
				continue
			}
			prev.IsDefault = false
			if err := s.backend.Put(ctx, prev); err != nil {
				s.restoreLocked(ctx, demoted)
				return remote.Config{}, fmt.Errorf("demote default %s: %w", id, err)
			}
			demoted = append(demoted, prev)
		}
	}

	if err := s.backend.Put(ctx, cfg); err != nil {
		s.restoreLocked(ctx, demoted)
		return remote.Config{}, fmt.Errorf("save configuration %s: %w", cfg.ID, err)
	}
	for _, prev := range demoted {
		s.configs[prev.ID] = prev
		s.logger.Info("default configuration replaced", "previous", prev.ID, "default", cfg.ID)
	}
	if _, ok := s.configs[cfg.ID]; !ok {
		s.order = append(s.order, cfg.ID)
	}
	s.configs[cfg.ID] = cfg
	s.logger.Info("saved configuration", "id", cfg.ID, "name", cfg.Name, "keys", len(cfg.Keys))
	return cfg.Clone(), nil
}

// restoreLocked writes back the default flag of configurations demoted by a
// save that did not complete. The cache still holds them flagged.
func (s *Store) restoreLocked(ctx context.Context, demoted []remote.Config) {
	for _, prev := range demoted {
		prev.IsDefault = true
		if err := s.backend.Put(context.WithoutCancel(ctx), prev); err != nil {
			s.logger.Error("restore default flag failed", "id", prev.ID, "error", err)
		}
	}
}

// Delete removes id. The default configuration cannot be deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.defaultLocked().ID {
		s.logger.Warn("refusing to delete default configuration", "id", id)
		return ErrCannotDeleteDefault
	}
	if _, ok := s.configs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete configuration %s: %w", id, err)
	}
	delete(s.configs, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.logger.Info("deleted configuration", "id", id)
	return nil
}

// Export renders cfg as an indented interchange record.
func (s *Store) Export(cfg remote.Config) (string, error) {
	return Export(cfg)
}

// Export renders cfg as an indented interchange record.
func Export(cfg remote.Config) (string, error) {
	data, err := json.MarshalIndent(cfg.ToRecord(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", cfg.ID, err)
	}
	return string(data), nil
}

// Import parses an interchange record and saves it.
func (s *Store) Import(ctx context.Context, text string) (remote.Config, error) {
	cfg, err := ParseRecord(text)
	if err != nil {
		return remote.Config{}, err
	}
	return s.Save(ctx, cfg)
}

// ParseRecord decodes and checks an interchange record without saving it.
func ParseRecord(text string) (remote.Config, error) {
	var rec remote.Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return remote.Config{}, &ImportError{Kind: ErrImportMalformed, Err: err}
	}
	var missing []string
	if strings.TrimSpace(rec.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(rec.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return remote.Config{}, &ImportError{Kind: ErrImportMissingFields, Err: errors.New(strings.Join(missing, ", "))}
	}
	cfg, err := rec.Config()
	if err != nil {
		return remote.Config{}, &ImportError{Kind: ErrImportMalformed, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return remote.Config{}, &ImportError{Kind: ErrImportMalformed, Err: err}
	}
	return cfg, nil
}
