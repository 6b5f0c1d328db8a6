package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/epochbits/internal/cliconfig"
	"github.com/bft-labs/epochbits/pkg/epochbits"
)

func newTraceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "Replay the activation walk-through",
		Long: `Replay the activation walk-through: a participant starts at epoch 5,
goes offline at 10, resumes at 15, and history is rewritten from 7.
Each value is shown from raw mask arithmetic and from the bitfield
operations. Use --width 32 for readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := epochbits.Trace(a.cfg.Width)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, s := range steps {
				if i > 0 && s.Section != steps[i-1].Section {
					fmt.Fprintln(out)
				}
				line := s.Value.Format(s.Label)
				if a.cfg.Format != cliconfig.FormatBinary {
					line = a.render(s.Value) + "        " + s.Label
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
