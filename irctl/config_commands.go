package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
	"github.com/derktes/ir-remote/store"
)

var categoryTitle = cases.Title(language.English)

func newConfigCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newConfigsCommand(ctx),
		newKeysCommand(ctx),
		newShowCommand(ctx),
		newExportCommand(ctx),
		newImportCommand(ctx),
		newDeleteCommand(ctx),
		newKeyCommand(ctx),
	}
}

func newConfigsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List stored remote configurations, default first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
				registry := ir.DefaultRegistry()
				configs := st.ListAll()
				rows := make([][]string, 0, len(configs))
				for _, cfg := range configs {
					rows = append(rows, []string{
						cfg.ID,
						cfg.Name,
						cfg.ProtocolName(registry),
						cfg.FormattedHeader(),
						strconv.Itoa(len(cfg.Keys)),
						yesNo(cfg.IsDefault),
						formatTime(cfg.UpdatedAt),
					})
				}
				return writeTable(cmd.OutOrStdout(), configColumns, rows)
			})
		},
	}
}

func newKeysCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	cmd := &cobra.Command{
		Use:   "keys [id]",
		Short: "List the keys of a configuration (default configuration without id)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
				cfg, err := resolveConfig(st, args)
				if err != nil {
					return err
				}
				keys := []remote.Key(cfg.Keys)
				if categoryFlag != "" {
					category, err := remote.ParseCategory(categoryFlag)
					if err != nil {
						return err
					}
					keys = nil
					for k := range cfg.Keys.InCategory(category) {
						keys = append(keys, k)
					}
				}
				return writeKeys(cmd.OutOrStdout(), keys)
			})
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Only keys in this category")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a configuration and its keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
				cfg, err := resolveConfig(st, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", cfg.ID)
				fmt.Fprintf(out, "Name:     %s\n", cfg.Name)
				fmt.Fprintf(out, "Protocol: %s (%s)\n", cfg.ProtocolName(ir.DefaultRegistry()), cfg.FormattedProtocol())
				fmt.Fprintf(out, "Header:   %s\n", cfg.FormattedHeader())
				fmt.Fprintf(out, "Default:  %s\n", yesNo(cfg.IsDefault))
				fmt.Fprintf(out, "Created:  %s\n", formatTime(cfg.CreatedAt))
				fmt.Fprintf(out, "Updated:  %s\n\n", formatTime(cfg.UpdatedAt))
				return writeKeys(out, cfg.Keys)
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <id>",
		Short: "Print a configuration as an interchange JSON record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
				cfg, err := resolveConfig(st, args)
				if err != nil {
					return err
				}
				text, err := st.Export(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import an interchange JSON record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return ctx.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				cfg, err := st.Import(ctx, string(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s, %d keys)\n", cfg.ID, cfg.Name, len(cfg.Keys))
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newKeyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Edit the keys of a configuration",
	}
	cmd.AddCommand(newKeySetCommand(ctx), newKeyRemoveCommand(ctx))
	return cmd
}

func newKeySetCommand(ctx *commandContext) *cobra.Command {
	var (
		label        string
		categoryFlag string
	)
	cmd := &cobra.Command{
		Use:   "set <id> <name> <code>",
		Short: "Add a key or replace the key with the same name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := remote.ParseCode(args[2])
			if err != nil {
				return err
			}
			category, err := remote.ParseCategory(categoryFlag)
			if err != nil {
				return err
			}
			key := remote.NewKey(args[1], code, label, category)

			return ctx.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				cfg, err := resolveConfig(st, args[:1])
				if err != nil {
					return err
				}
				verb := "Added"
				if i := cfg.Keys.Index(key.Name); i >= 0 {
					cfg.Keys, err = cfg.Keys.Replace(i, key)
					verb = "Replaced"
				} else {
					cfg.Keys, err = cfg.Keys.Add(key)
				}
				if err != nil {
					return err
				}
				if _, err := st.Save(ctx, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) in %s\n", verb, key.Name, key.FormattedCode(), cfg.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Display label (defaults to the key name)")
	cmd.Flags().StringVar(&categoryFlag, "category", "function", "Key category")
	return cmd
}

func newKeyRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <name>",
		Short: "Remove a key from a configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				cfg, err := resolveConfig(st, args[:1])
				if err != nil {
					return err
				}
				i := cfg.Keys.Index(args[1])
				if i < 0 {
					return fmt.Errorf("key %s not found in %s", args[1], cfg.ID)
				}
				if cfg.Keys, err = cfg.Keys.Remove(i); err != nil {
					return err
				}
				if _, err := st.Save(ctx, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], cfg.ID)
				return nil
			})
		},
	}
}

// resolveConfig returns the configuration named by args[0], or the default.
func resolveConfig(st *store.Store, args []string) (remote.Config, error) {
	if len(args) == 0 || args[0] == "" {
		return st.GetDefault(), nil
	}
	cfg, ok := st.Get(args[0])
	if !ok {
		return remote.Config{}, fmt.Errorf("%w: %s", store.ErrConfigNotFound, args[0])
	}
	return cfg, nil
}

func writeKeys(out io.Writer, keys []remote.Key) error {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k.Name, k.FormattedCode(), k.Label, categoryTitle.String(k.Category.String())})
	}
	return writeTable(out, keyColumns, rows)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
