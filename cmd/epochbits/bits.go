package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bft-labs/epochbits/internal/cliconfig"
	"github.com/bft-labs/epochbits/pkg/epochbits"
)

func newMaskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "mask <len>",
		Short:   "Print a bitfield with the lowest len epochs set",
		Example: "  epochbits mask --width 32 5\n  epochbits mask -- -1    # negative values follow --",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseEpoch(args[0])
			if err != nil {
				return err
			}
			m, err := epochbits.Bitmask(a.cfg.Width, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.render(m))
			return nil
		},
	}
}

func newActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <bits> <epoch>",
		Short: "Set every epoch from <epoch> onward",
		Long:  "Set every epoch from <epoch> onward. <bits> accepts 0b, 0x or decimal literals.\nPut negative values after -- so they are not read as flags.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.applyCutoff(cmd, args, epochbits.Bitfield.ActivateFrom)
		},
	}
}

func newDeactivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <bits> <epoch>",
		Short: "Clear every epoch from <epoch> onward",
		Long:  "Clear every epoch from <epoch> onward. <bits> accepts 0b, 0x or decimal literals.\nPut negative values after -- so they are not read as flags.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.applyCutoff(cmd, args, epochbits.Bitfield.DeactivateFrom)
		},
	}
}

func (a *app) applyCutoff(cmd *cobra.Command, args []string, apply func(epochbits.Bitfield, int) (epochbits.Bitfield, error)) error {
	b, err := epochbits.Parse(a.cfg.Width, args[0])
	if err != nil {
		return err
	}
	e, err := parseEpoch(args[1])
	if err != nil {
		return err
	}
	out, err := apply(b, e)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.render(out))
	return nil
}

func parseEpoch(s string) (int, error) {
	e, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("epoch %q: %w", s, epochbits.ErrInvalidEpoch)
	}
	return e, nil
}

// render prints b in the configured output format.
func (a *app) render(b epochbits.Bitfield) string {
	switch a.cfg.Format {
	case cliconfig.FormatHex:
		return b.Hex()
	case cliconfig.FormatEpochs:
		return fmt.Sprint(b.Epochs())
	default:
		return b.String()
	}
}
