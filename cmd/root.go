package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/options"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	verbose    bool
	configPath string
	cfg        *options.Config
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "gomoebius",
		Short:        "Moebius-style outline renderer",
		Long:         "gomoebius renders a 3D scene with hand-drawn outlines, hatching, tone mapping and antialiasing.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			log.SetDefault(newLogger(os.Stderr, level))
			return a.loadConfig()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(newViewCmd(a))
	root.AddCommand(newRecordCmd(a))
	root.AddCommand(newSnapshotCmd(a))
	return root
}

// loadConfig reads --config, or the defaults when no file is given. An
// invalid file at startup is fatal.
func (a *app) loadConfig() error {
	if a.configPath == "" {
		a.cfg = options.Default()
		return nil
	}
	cfg, err := options.Load(a.configPath)
	if err != nil {
		return err
	}
	log.Info("loaded config", "path", a.configPath)
	a.cfg = cfg
	return nil
}
