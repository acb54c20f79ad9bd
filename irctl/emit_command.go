package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
	"github.com/derktes/ir-remote/store"
	"github.com/derktes/ir-remote/transmit"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var (
		configID     string
		byCode       bool
		repeat       bool
		raw          bool
		frequency    uint32
		protocolFlag string
		headerFlag   string
	)
	cmd := &cobra.Command{
		Use:   "emit <key|code|pattern>",
		Short: "Transmit a key through the configured emitter",
		Args: func(cmd *cobra.Command, args []string) error {
			if repeat {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd)
			tx, err := transmit.Open(cfg.Transmitter.Kind, cfg.Transmitter.Port, cfg.Transmitter.Baud,
				cfg.Transmitter.FrequencyRanges, logger)
			if err != nil {
				return err
			}
			if closer, ok := tx.(interface{ Close() error }); ok {
				defer closer.Close()
			}
			coordinator := emission.NewCoordinator(ir.DefaultRegistry(), logger)

			custom := protocolFlag != "" || headerFlag != ""
			var result emission.Result
			switch {
			case repeat:
				result = coordinator.EmitRepeat(tx)
			case raw:
				pattern, err := ir.ParsePattern(args[0], frequency)
				if err != nil {
					return err
				}
				result = coordinator.EmitRaw(frequency, pattern, tx)
			case custom:
				protocol := ir.ProtocolNEC
				if protocolFlag != "" {
					if protocol, err = ir.ParseProtocol(protocolFlag); err != nil {
						return err
					}
				}
				header := uint16(remote.DefaultHeader)
				if headerFlag != "" {
					if header, err = remote.ParseCode(headerFlag); err != nil {
						return fmt.Errorf("header: %w", err)
					}
				}
				code, err := remote.ParseCode(args[0])
				if err != nil {
					return err
				}
				result = coordinator.EmitCustom(protocol, header, code, tx)
			default:
				err = ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
					rc, err := resolveConfig(st, []string{configID})
					if err != nil {
						return err
					}
					if byCode {
						code, err := remote.ParseCode(args[0])
						if err != nil {
							return err
						}
						result = coordinator.EmitByCode(rc, code, tx)
						return nil
					}
					result = coordinator.Emit(rc, args[0], tx)
					return nil
				})
				if err != nil {
					return err
				}
			}

			if !result.Success {
				return errors.New(result.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configID, "config-id", "", "Configuration to use instead of the default")
	cmd.Flags().BoolVar(&byCode, "code", false, "Treat the argument as a key code")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "Send the NEC repeat frame")
	cmd.Flags().BoolVar(&raw, "raw", false, "Treat the argument as a comma separated timing pattern")
	cmd.Flags().Uint32Var(&frequency, "frequency", ir.NECCarrierHz, "Carrier frequency in Hz for --raw")
	cmd.Flags().StringVar(&protocolFlag, "protocol", "", "Send the code with this protocol instead of a stored configuration")
	cmd.Flags().StringVar(&headerFlag, "header", "", "Header for --protocol (defaults to 0x8890)")
	return cmd
}
