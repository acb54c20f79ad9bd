// Package remotesync pulls remote configurations from a distribution server
// into the local store.
package remotesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/derktes/ir-remote/remote"
)

// Saver persists fetched configurations.
type Saver interface {
	Save(ctx context.Context, cfg remote.Config) (remote.Config, error)
}

// Report summarises one SyncAll run.
type Report struct {
	Listed int
	Saved  int
	Failed int
}

// Syncer copies remote configurations into a Saver.
type Syncer struct {
	fetcher Fetcher
	saver   Saver
	logger  *slog.Logger
}

func NewSyncer(fetcher Fetcher, saver Saver, logger *slog.Logger) *Syncer {
	return &Syncer{fetcher: fetcher, saver: saver, logger: logger}
}

// SyncAll fetches every listed configuration and saves it. Per-config
// failures are logged and counted; only a failed listing is an error. An
// empty listing is a successful sync.
func (s *Syncer) SyncAll(ctx context.Context) (Report, error) {
	list, err := s.fetcher.ListMetadata(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list remote configurations: %w", err)
	}
	report := Report{Listed: len(list)}
	for _, md := range list {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.SyncOne(ctx, md.ID); err != nil {
			s.logger.Warn("sync of configuration failed", "id", md.ID, "error", err)
			report.Failed++
			continue
		}
		report.Saved++
	}
	s.logger.Info("remote sync finished", "listed", report.Listed, "saved", report.Saved, "failed", report.Failed)
	return report, nil
}

// SyncOne fetches and saves a single configuration.
func (s *Syncer) SyncOne(ctx context.Context, id string) error {
	cfg, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", id, err)
	}
	if cfg.Keys == nil {
		cfg.Keys = remote.Catalog{}
	}
	if _, err := s.saver.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

// StartPeriodic runs SyncAll every interval until ctx is done.
func (s *Syncer) StartPeriodic(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SyncAll(ctx); err != nil {
					s.logger.Error("periodic sync failed", "error", err)
				}
			}
		}
	}()
}
