package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/mentoraid/config"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries what the persistent flags resolved to.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "mentoraid",
		Short: "Student dropout prediction: model tuning, feature audit and documentation",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML configuration file (defaults are used when empty)")
	f.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides the config)")

	cmd.AddCommand(newTuneCmd(a), newAuditCmd(a), newReportCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := log.SetupLogger(cfg.LogLevel, cfg.LogConsole, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
