package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg      Config
		mongoURI string
		logger   *zap.Logger
	)

	cmd := &cobra.Command{
		Use:   "randomize-command-codes",
		Short: "Assign fresh random codes to the commands of an implant configuration",
		Long: `Loads an implant configuration, gives every entry of implant.tasks.commands
a distinct random code in [1, 65535) and writes the result back out.

Without --output or --replace the result is printed to standard output.

Examples:
  randomize-command-codes -i config/default.json -o config/randomized.json
  randomize-command-codes -i config/default.json --replace`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = loggerConfig(cfg.Verbose).Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := LoadArchiveConfig()
			if err != nil {
				return err
			}
			if mongoURI != "" {
				archive.MongoURI = mongoURI
			}
			cfg.Archive = archive
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.InputPath, "input", "i", "", "Input configuration file")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "Save the output to this file")
	flags.BoolVarP(&cfg.Replace, "replace", "r", false, "Replace the input file (in place)")
	flags.Int64Var(&cfg.Seed, "seed", 0, "Seed for the code generator (0 seeds from the clock)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&mongoURI, "mongo-uri", "", "Archive code assignments to this MongoDB (overrides RANDOMIZER_MONGO_URI)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// loggerConfig is the production config. Verbose runs log at debug level
// without sampling so every per-command line is kept.
func loggerConfig(verbose bool) zap.Config {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Sampling = nil
	}
	return config
}

func run(ctx context.Context, cfg Config, stdout io.Writer, logger *zap.Logger) error {
	p := &Pipeline{
		Logger:     logger,
		Randomizer: cfg.NewRandomizer(),
		Output:     cfg.Output(stdout),
		Registry:   metrics.NewRegistry(),
	}

	if cfg.Archive.Enabled() {
		archive, disconnect, err := ConnectArchive(ctx, cfg.Archive)
		if err != nil {
			logger.Warn("Archive disabled", zap.Error(err))
		} else {
			defer func() {
				if err := disconnect(context.Background()); err != nil {
					logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
				}
			}()
			p.Archive = archive
		}
	}

	res, err := p.Run(ctx, cfg.InputPath)
	if err != nil {
		logger.Error("Failed to randomize the configuration",
			zap.String("kind", errorKind(err)),
			zap.String("input", cfg.InputPath),
			zap.Error(err))
		return err
	}

	logger.Info("Randomized command codes",
		zap.String("run_id", res.RunID),
		zap.String("input", cfg.InputPath),
		zap.String("output", res.Destination),
		zap.Int("commands", len(res.Assignments)))
	return nil
}
