package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// SeedFile imports the records in path that the store does not hold yet. The
// file holds one interchange record or a JSON array of them. It returns the
// number of configurations added.
func (s *Store) SeedFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var raw []json.RawMessage
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return 0, &ImportError{Kind: ErrImportMalformed, Err: err}
		}
	} else {
		raw = []json.RawMessage{trimmed}
	}

	added := 0
	for i, r := range raw {
		cfg, err := ParseRecord(string(r))
		if err != nil {
			return added, fmt.Errorf("seed record %d: %w", i, err)
		}
		if _, ok := s.Get(cfg.ID); ok {
			continue
		}
		if _, err := s.Save(ctx, cfg); err != nil {
			return added, fmt.Errorf("seed %s: %w", cfg.ID, err)
		}
		added++
	}
	s.logger.Info("seeded configurations", "file", path, "added", added, "records", len(raw))
	return added, nil
}
