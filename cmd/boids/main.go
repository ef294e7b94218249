package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-flock3d/internal/keyframe"
	"github.com/lao-tseu-is-alive/go-flock3d/internal/logging"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "boids",
		Short: "3D boids flocking simulation",
		Long: `Simulates a flock of boids in a 3D box and writes one keyframe per boid
per frame (position, velocity, rotation) for a host animation package.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json or yaml)")

	rootCmd.AddCommand(
		runCmd(),
		validateCmd(),
		inspectCmd(),
	)

	cobra.OnInitialize(initViper)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initViper() {
	viper.SetEnvPrefix("BOIDS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig starts from the defaults, applies the config file if any, then
// every flag or BOIDS_* variable that was explicitly set.
func loadConfig() (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if cfgFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(cfgFile); err != nil {
			return nil, err
		}
	}

	if viper.IsSet("population") {
		cfg.Population = viper.GetInt("population")
	}
	if viper.IsSet("frames") {
		cfg.Frames = viper.GetInt("frames")
	}
	if viper.IsSet("seed") {
		cfg.Seed = viper.GetUint64("seed")
	}
	if viper.IsSet("order") {
		cfg.UpdateOrder = viper.GetString("order")
	}
	if viper.IsSet("stats-every") {
		cfg.StatsEvery = viper.GetInt("stats-every")
	}
	if viper.IsSet("log-level") {
		cfg.LogLevel = viper.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and write the keyframes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			out, closeOut, err := openOutput(viper.GetString("output"))
			if err != nil {
				return err
			}
			defer closeOut()

			writer, err := keyframe.New(viper.GetString("format"), out)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return simulate(ctx, cfg, writer, logger)
		},
	}

	cmd.Flags().Int("population", 0, "number of boids (default from config: 2400)")
	cmd.Flags().Int("frames", 0, "number of frames to simulate (default from config: 420)")
	cmd.Flags().Uint64("seed", 0, "random seed (default from config: 1)")
	cmd.Flags().String("order", "", "update order: sequential or snapshot")
	cmd.Flags().Int("stats-every", 0, "log flock statistics every N frames")
	cmd.Flags().String("log-level", "", "debug, info, warn or error")
	cmd.Flags().StringP("output", "o", "-", "keyframe output file, - for stdout")
	cmd.Flags().String("format", keyframe.FormatJSON, "keyframe format: jsonl or proto")
	bindFlags(cmd)

	return cmd
}

func simulate(ctx context.Context, cfg *simulation.Config, writer keyframe.Writer, logger *zap.Logger) error {
	start := time.Now()
	world, err := simulation.NewWorld(cfg,
		simulation.WithSink(writer),
		simulation.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	runErr := world.Run(ctx)
	// Keep what was simulated, even on cancellation.
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush keyframes: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("keyframes written",
		zap.String("run", world.RunID()),
		zap.Int("frames", world.FramesDone()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print the effective values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", *cfg)
			return nil
		},
	}
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a keyframe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			format, _ := cmd.Flags().GetString("format")
			records, err := keyframe.Read(format, f)
			if err != nil {
				return err
			}
			s := keyframe.Summarize(records)
			fmt.Fprintf(cmd.OutOrStdout(), "agents: %d\nkeys: %d\nframes: %d..%d\n",
				s.Agents, s.Keys, s.FirstFrame, s.LastFrame)
			return nil
		},
	}
	cmd.Flags().String("format", keyframe.FormatJSON, "keyframe format: jsonl or proto")
	return cmd
}

func bindFlags(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Fatal(err)
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
