package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"github.com/derktes/ir-remote/remote"
)

const (
	recordExt    = ".json"
	lockFileName = ".configs.lock"
)

// DirBackend stores one <id>.json interchange record per configuration, the
// layout the distribution server serves from. A lock file guards the
// directory against concurrent writers in other processes.
type DirBackend struct {
	dir  string
	lock *flock.Flock
}

// OpenDir creates dir if needed.
func OpenDir(dir string) (*DirBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return &DirBackend{dir: dir, lock: flock.New(filepath.Join(dir, lockFileName))}, nil
}

func (b *DirBackend) file(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(b.dir, id+recordExt), nil
}

// Load reads every record, ordered by creation time then id.
func (b *DirBackend) Load(context.Context) ([]remote.Config, error) {
	if err := b.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock config directory: %w", err)
	}
	defer func() { _ = b.lock.Unlock() }()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("read config directory: %w", err)
	}
	var out []remote.Config
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var cfg remote.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Name(), err)
		}
		if cfg.ID == "" {
			cfg.ID = strings.TrimSuffix(entry.Name(), recordExt)
		}
		out = append(out, cfg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (b *DirBackend) Put(_ context.Context, cfg remote.Config) error {
	path, err := b.file(cfg.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg.ToRecord(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", cfg.ID, err)
	}

	if err := b.lock.Lock(); err != nil {
		return fmt.Errorf("lock config directory: %w", err)
	}
	defer func() { _ = b.lock.Unlock() }()

	tmp, err := os.CreateTemp(b.dir, ".tmp-*"+recordExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", cfg.ID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", cfg.ID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", cfg.ID, err)
	}
	return nil
}

func (b *DirBackend) Delete(_ context.Context, id string) error {
	path, err := b.file(id)
	if err != nil {
		return err
	}
	if err := b.lock.Lock(); err != nil {
		return fmt.Errorf("lock config directory: %w", err)
	}
	defer func() { _ = b.lock.Unlock() }()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

func (b *DirBackend) Close() error {
	return b.lock.Close()
}
