package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/horses3d/hpost/lib/logger"
	"github.com/horses3d/hpost/lib/metrics"
)

func main() {
	app := newApp()
	if err := app.root.Execute(); err != nil {
		log := app.log
		if app.cfg == nil {
			// The configuration never loaded, so neither did the logger.
			log, _ = logger.New(defaultLogLevel)
		}
		logger.External(log, "%s", err.Error())
	}
}

// app holds the state shared by every hpost command.
type app struct {
	root *cobra.Command
	cfg  *Config
	log  *zap.Logger

	cfgFile string
}

func newApp() *app {
	a := &app{log: zap.NewNop()}
	v := newViper()

	a.root = &cobra.Command{
		Use:   "hpost",
		Short: "Post-processor for HORSES3D solution files",
		Long: `hpost decodes the .hsol and .hmesh files written by the HORSES3D solver and
derives velocity magnitude, pressure, temperature, speed of sound and Mach
number from the conservative variables they store.

Solution files are found through the run's control file, so most commands
take the path to a control file as their argument.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(v)
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default is $HOME/.config/hpost.yaml)")
	flags.String("log-level", defaultLogLevel,
		"log level: debug, info, warn or error")
	flags.String("byte-order", defaultByteOrder,
		"byte order of solution files: native, little or big")
	flags.String("metrics-file", "",
		"write prometheus counters to this file after the command finishes")
	if err := bindFlags(v, flags, map[string]string{
		keyLogLevel:    "log-level",
		keyByteOrder:   "byte-order",
		keyMetricsFile: "metrics-file",
	}); err != nil {
		panic(fmt.Sprintf("Internal error: %s", err.Error()))
	}

	a.root.AddCommand(
		a.checkCmd(),
		a.processCmd(),
		a.watchCmd(),
		a.inspectCmd(),
		a.meshCmd(),
		a.controlCmd(),
	)
	return a
}

// init reads the configuration and builds the logger. It runs before every
// command.
func (a *app) init(v *viper.Viper) error {
	cfg, err := loadConfig(v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	if cfg.File != "" {
		a.log.Debug("using config file", zap.String("path", cfg.File))
	}
	return nil
}

// checkCmd runs hpost's "check" mode, which tests for errors in the
// configuration.
func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No errors detected.")
			return nil
		},
	}
}

// finish writes the metrics file, if one was configured.
func (a *app) finish() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	return metrics.WriteFile(a.cfg.MetricsFile)
}
