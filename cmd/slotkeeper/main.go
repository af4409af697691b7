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

	"github.com/bft-labs/slotkeeper/internal/adapters/fs"
	logAdapter "github.com/bft-labs/slotkeeper/internal/adapters/log"
	"github.com/bft-labs/slotkeeper/internal/cliconfig"
)

const helpDescription = `
Inspect and manage slotkeeper save directories.

Every save lives under one directory: numbered slots (0 is the quicksave),
their thumbnails, and a single auto-save that resumes the last session.
Configure via file ($XDG_CONFIG_HOME/slotkeeper/config.toml), SLOTKEEPER_*
environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  slotkeeper list
  slotkeeper --save-dir ~/games/saves info quick
  slotkeeper export 3 backup.sav
  slotkeeper watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration into subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger("info"),
	}

	root := &cobra.Command{
		Use:           "slotkeeper",
		Short:         "Inspect and manage emulator save slots",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/slotkeeper/config.toml)")
	flags.StringVar(&c.cfg.SaveDir, "save-dir", c.cfg.SaveDir, "save directory")
	flags.IntVar(&c.cfg.ManualSlots, "slots", c.cfg.ManualSlots, "number of manual slots")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.DurationVar(&c.cfg.CaptureTimeout, "capture-timeout", c.cfg.CaptureTimeout, "screenshot timeout for embedded sessions")
	if err := flags.MarkHidden("capture-timeout"); err != nil {
		c.log.Info().Err(err).Msg("failed to hide capture-timeout flag")
	}
	flags.DurationVar(&c.cfg.AutoSaveInterval, "auto-save-interval", c.cfg.AutoSaveInterval, "periodic auto-save for embedded sessions (0 disables)")
	if err := flags.MarkHidden("auto-save-interval"); err != nil {
		c.log.Info().Err(err).Msg("failed to hide auto-save-interval flag")
	}

	root.AddCommand(
		c.listCommand(),
		c.infoCommand(),
		c.deleteCommand(),
		c.clearAutoCommand(),
		c.exportCommand(),
		c.watchCommand(),
		c.configCommand(),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("slotkeeper")
		os.Exit(1)
	}
}

// load resolves configuration with precedence flags > env > file > defaults.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)
	c.log.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func (c *cli) store() *fs.SlotStore {
	return fs.NewSlotStore(c.cfg.SaveDir, c.cfg.ManualSlots, logAdapter.NewZerologAdapterWithLogger(c.log))
}
