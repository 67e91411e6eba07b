package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/picsort/config"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Set at build time
	version = "dev"

	// Global flags
	cfgFile     string
	verbose     int
	holdingDir  string
	metricsFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "picsort",
	Short: "Sort images into folders one at a time",
	Long: `picsort walks through the images in one or more directories and lets you
move each one into a destination folder, delete it, or skip it.

Deleted images are kept in a holding directory until purged, so every action
can be undone and redone for the rest of the session.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.InitializeLogger(config.VerbosityToLogLevel(verbose))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "picsort %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", config.InfoVerbose,
		"log verbosity between 1 (error) and 5 (trace)")
	rootCmd.PersistentFlags().StringVar(&holdingDir, "holding-dir", "", "where deleted images are kept until purged")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the session config from the config file, if any, with
// command line flags taking precedence
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	logger := util.GetLogger("main")

	cfg := config.NewDefaultConfig()
	if cfgFile != "" {
		override, err := config.LoadConfigOverrideFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Merge(override)
		logger.Debug().Str("path", cfgFile).Msg("Loaded config file")
	}

	flags := &config.ConfigOverride{}
	if cmd.Flags().Changed("verbose") {
		flags.LogLvl = util.Pointer(verbose)
	}
	if cmd.Flags().Changed("holding-dir") {
		flags.HoldingDir = util.Pointer(holdingDir)
	}
	if cmd.Flags().Changed("metrics-file") {
		flags.MetricsFile = util.Pointer(metricsFile)
	}
	if cmd.Flags().Lookup("order") != nil && cmd.Flags().Changed("order") {
		flags.Order = util.Pointer(order)
	}
	if cmd.Flags().Lookup("depth") != nil && cmd.Flags().Changed("depth") {
		flags.ScanDepth = util.Pointer(depth)
	}
	cfg.Merge(flags)

	// the config file may set a different level than the flag default
	util.InitializeLogger(cfg.LogLvl)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Debug().
		Str("holdingDir", cfg.HoldingDir).
		Int("scanWorkers", cfg.ScanWorkers).
		Int("scanDepth", cfg.ScanDepth).
		Str("order", cfg.Order).
		Msg("Configuration loaded")
	return cfg, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
