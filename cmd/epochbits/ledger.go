package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/epochbits/pkg/epochbits"
	"github.com/bft-labs/epochbits/pkg/ledger"
	"github.com/bft-labs/epochbits/pkg/log"
	"github.com/bft-labs/epochbits/pkg/state"
)

func newLedgerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Read and update participant bitfields in the state directory",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [participant]",
			Short: "Print one participant, or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				l, err := a.openLedger(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					b, _ := l.Get(args[0])
					fmt.Fprintln(out, a.render(b))
					return nil
				}
				for _, id := range l.Participants() {
					b, _ := l.Get(id)
					fmt.Fprintf(out, "%s\t%s\n", id, a.render(b))
				}
				return nil
			},
		},
		a.ledgerCutoffCmd("activate", "Set the participant's epochs from <epoch> onward", (*ledger.Ledger).ActivateFrom),
		a.ledgerCutoffCmd("deactivate", "Clear the participant's epochs from <epoch> onward", (*ledger.Ledger).DeactivateFrom),
		&cobra.Command{
			Use:   "reset <participant>",
			Short: "Forget a participant",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				l, err := a.openLedger(cmd.Context())
				if err != nil {
					return err
				}
				ok, err := l.Reset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("participant %q is not tracked", args[0])
				}
				return nil
			},
		},
	)
	return cmd
}

type ledgerUpdate func(*ledger.Ledger, context.Context, string, int) (epochbits.Bitfield, error)

func (a *app) ledgerCutoffCmd(use, short string, update ledgerUpdate) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <participant> <epoch>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseEpoch(args[1])
			if err != nil {
				return err
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			b, err := update(l, cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.render(b))
			return nil
		},
	}
}

func (a *app) repository() *state.FileRepository {
	return state.NewFileRepository(a.cfg.StateDir, a.cfg.Width)
}

func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, error) {
	return ledger.Open(ctx, a.cfg.Width,
		ledger.WithRepository(a.repository()),
		ledger.WithLogger(log.NewZerologAdapterWithLogger(a.log)),
	)
}
