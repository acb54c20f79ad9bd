package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derktes/ir-remote/remotesync"
	"github.com/derktes/ir-remote/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		id       string
		urlFlag  string
		fetchDef bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull configurations from the distribution server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			url := cfg.Sync.URL
			if urlFlag != "" {
				url = urlFlag
			}
			if url == "" {
				return errors.New("no sync url: set sync.url or pass --url")
			}
			timeout, err := cfg.SyncTimeout()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd)
			client, err := remotesync.NewHTTPClient(url, timeout, logger)
			if err != nil {
				return err
			}

			return ctx.withStore(cmd, func(c context.Context, st *store.Store) error {
				syncer := remotesync.NewSyncer(client, st, logger)
				out := cmd.OutOrStdout()
				if fetchDef {
					remoteDefault, err := client.FetchDefault(c)
					if err != nil {
						return err
					}
					saved, err := st.Save(c, remoteDefault)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Synced default %s\n", saved.ID)
					return nil
				}
				if id != "" {
					if err := syncer.SyncOne(c, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "Synced %s\n", id)
					return nil
				}
				report, err := syncer.SyncAll(c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Synced %d of %d configurations (%d failed)\n", report.Saved, report.Listed, report.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Sync a single configuration")
	cmd.Flags().BoolVar(&fetchDef, "default", false, "Sync only the server's default configuration")
	cmd.Flags().StringVar(&urlFlag, "url", "", "Distribution server URL (overrides sync.url)")
	return cmd
}
