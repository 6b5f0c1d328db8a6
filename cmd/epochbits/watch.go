package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/epochbits/internal/watch"
	"github.com/bft-labs/epochbits/pkg/log"
	"github.com/bft-labs/epochbits/pkg/state"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the state file and log every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.cfg.StateDir, 0o700); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo := a.repository()
			w := watch.New(
				watch.Config{DebounceDelay: a.cfg.WatchDebounce},
				repo.Path(),
				repo,
				a.logState,
				log.NewZerologAdapterWithLogger(a.log),
			)
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&a.cfg.WatchDebounce, "debounce", a.cfg.WatchDebounce, "delay after a change before reloading")
	return cmd
}

func (a *app) logState(st state.State) {
	if st.IsEmpty() {
		a.log.Info().Int("width", st.Width).Msg("state empty")
		return
	}
	ids := make([]string, 0, len(st.Participants))
	for id := range st.Participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b := st.Participants[id]
		a.log.Info().
			Str("participant", id).
			Int("active", b.Count()).
			Str("bits", a.render(b)).
			Time("updated_at", st.UpdatedAt).
			Msg("state")
	}
}
