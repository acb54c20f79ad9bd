package server

import (
	"context"
	"log/slog"

	"github.com/derktes/ir-remote/config"
	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remotesync"
	"github.com/derktes/ir-remote/store"
	"github.com/derktes/ir-remote/transmit"
)

const eventBuffer = 16

// Run wires the store, transmitter, sync loop and HTTP server from cfg and
// serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := store.OpenBackend(ctx, cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, backend, logger.With("component", "store"))
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer st.Close()

	if cfg.Store.SeedFile != "" {
		if _, err := st.SeedFile(ctx, cfg.Store.SeedFile); err != nil {
			return err
		}
	}

	tx, err := transmit.Open(cfg.Transmitter.Kind, cfg.Transmitter.Port, cfg.Transmitter.Baud,
		cfg.Transmitter.FrequencyRanges, logger.With("component", "transmitter"))
	if err != nil {
		return err
	}
	if closer, ok := tx.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if cfg.Sync.URL != "" {
		if err := startSync(ctx, cfg, st, logger.With("component", "sync")); err != nil {
			return err
		}
	}

	registry := ir.DefaultRegistry()
	hub := emission.NewHub(eventBuffer, logger.With("component", "hub"))
	srv := New(Deps{
		Store:       st,
		Coordinator: emission.NewCoordinator(registry, logger.With("component", "emission"), emission.WithHub(hub)),
		Transmitter: tx,
		Hub:         hub,
		Registry:    registry,
	}, logger)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func startSync(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) error {
	timeout, err := cfg.SyncTimeout()
	if err != nil {
		return err
	}
	interval, err := cfg.SyncInterval()
	if err != nil {
		return err
	}
	client, err := remotesync.NewHTTPClient(cfg.Sync.URL, timeout, logger)
	if err != nil {
		return err
	}
	syncer := remotesync.NewSyncer(client, st, logger)
	go func() {
		if _, err := syncer.SyncAll(ctx); err != nil {
			logger.Warn("initial sync failed", "error", err)
		}
	}()
	if interval > 0 {
		syncer.StartPeriodic(ctx, interval)
	}
	return nil
}
