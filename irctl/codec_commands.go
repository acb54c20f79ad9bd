package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
)

func newEncodeCommand() *cobra.Command {
	var (
		headerFlag   string
		commandFlag  string
		protocolFlag string
		repeat       bool
	)
	cmd := &cobra.Command{
		Use:         "encode",
		Short:       "Print the timing pattern for a header and command",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if repeat {
				fmt.Fprintln(cmd.OutOrStdout(), ir.EncodeRepeat().String())
				return nil
			}
			if commandFlag == "" {
				return fmt.Errorf("--command is required unless --repeat is set")
			}
			header, err := remote.ParseCode(headerFlag)
			if err != nil {
				return fmt.Errorf("header: %w", err)
			}
			command, err := remote.ParseCode(commandFlag)
			if err != nil || command > 0xFF {
				return fmt.Errorf("command: %w: %q", remote.ErrInvalidCodeFormat, commandFlag)
			}
			protocol, err := ir.ParseProtocol(protocolFlag)
			if err != nil {
				return err
			}
			pattern, err := ir.DefaultRegistry().Encode(protocol, header, uint8(command))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pattern.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&headerFlag, "header", "0x8890", "16-bit device header (hex with 0x, or decimal)")
	cmd.Flags().StringVar(&commandFlag, "command", "", "8-bit command")
	cmd.Flags().StringVar(&protocolFlag, "protocol", "NEC", "Protocol name or id")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "Print the repeat frame instead")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "decode <t1,t2,...|->",
		Short:       "Decode an NEC timing pattern",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimSpace(string(data))
			}
			pattern, err := ir.ParsePattern(text, ir.NECCarrierHz)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if pattern.Len() == ir.NECRepeatLength {
				if err := (ir.NECCodec{}).DecodeRepeat(pattern); err != nil {
					return err
				}
				fmt.Fprintln(out, "repeat")
				return nil
			}
			header, command, err := ir.Decode(pattern)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "header=0x%04X command=0x%02X\n", header, command)
			return nil
		},
	}
	return cmd
}
