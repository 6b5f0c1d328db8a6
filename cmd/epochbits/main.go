package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/epochbits/internal/cliconfig"
)

const longHelp = `
Inspect and maintain per-epoch activity bitfields.

Each participant owns a fixed-width bitfield where bit i is the flag for
epoch i. Activating from an epoch sets every flag from that epoch onward;
deactivating clears them. Flags below the cutoff are never touched.

Configuration is read from $HOME/.epochbits/config.toml, then EPOCHBITS_*
environment variables, then flags (flags win).
`

var exampleUsage = strings.TrimSpace(`
  epochbits trace --width 32
  epochbits activate --width 32 0 5
  epochbits ledger activate validator-1 12
  epochbits ledger show --format epochs
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration to every subcommand.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{cfg: cliconfig.DefaultConfig()}
	a.log = cliconfig.Logger(a.cfg)

	root := &cobra.Command{
		Use:               "epochbits",
		Short:             "Inspect and maintain per-epoch activity bitfields",
		Long:              strings.TrimSpace(longHelp),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.epochbits/config.toml)")
	pf.IntVar(&a.cfg.Width, "width", a.cfg.Width, "bitfield width in epochs (1-256)")
	pf.StringVar(&a.cfg.StateDir, "state-dir", a.cfg.StateDir, "directory holding epochs.json (default: $HOME/.epochbits)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error, disabled)")
	pf.StringVar(&a.cfg.Format, "format", a.cfg.Format, "output format (binary, hex, epochs)")
	pf.BoolVarP(&a.cfg.Verbose, "verbose", "v", a.cfg.Verbose, "debug logging")

	root.AddCommand(
		newMaskCmd(a),
		newActivateCmd(a),
		newDeactivateCmd(a),
		newTraceCmd(a),
		newLedgerCmd(a),
		newWatchCmd(a),
	)
	return root, a
}

// load resolves configuration: file, then environment, then flags.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	switch {
	case cfgFile != "" && cliconfig.FileExists(cfgFile):
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	case a.cfgPath != "":
		return fmt.Errorf("load config: %s does not exist", a.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.log = cliconfig.Logger(a.cfg)
	a.log.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func main() {
	root, a := newRootCmd()
	if err := root.Execute(); err != nil {
		a.log.Error().Err(err).Msg("epochbits")
		os.Exit(1)
	}
}
