package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/gemspec/internal/config"
	"github.com/frederic-klein/gemspec/internal/report"
)

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	format     report.Format
	logger     *log.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gemspec",
		Short: "Decode and check RubyGems specifications",
		Long: "gemspec decodes the YAML specification stored in .gem packages, " +
			"renders it as text, JSON, YAML or CBOR, and resolves Gemfiles against local gems.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/gemspec/config.yaml)")
	flags.IntP("workers", "w", 4, "Parallel decode workers")
	flags.StringP("format", "o", "text", "Output format: text, json, yaml or cbor")
	flags.StringSlice("include", []string{"**/*.gem"}, "Glob patterns selecting files when scanning a directory")
	flags.String("cache", "", "Index cache file written by scan and read by check")
	flags.Duration("cache-ttl", config.DefaultConfig().CacheTTL, "How long a cached index stays fresh")
	flags.BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newInspectCmd(a), newScanCmd(a), newCheckCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, path, err := config.Load(config.LoadOptions{
		ConfigFilePath: a.configPath,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.format = format
	a.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: config.AppName})
	if cfg.Verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}
