package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/zeusync/zecs/internal/config"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/injector"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zecs",
		Short:         "Headless entity component system runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

type runOptions struct {
	configPath string
	frames     int
	entities   int
	cpuProfile string
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the demo scene until the frame limit or an interrupt",
		Example: "zecs run --config configs/zecs.yaml --frames 600 --entities 2000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a .yaml or .toml config file")
	flags.IntVar(&opts.frames, "frames", -1, "stop after this many render frames, 0 runs until interrupted (overrides engine.max_frames)")
	flags.IntVar(&opts.entities, "entities", 1000, "number of entities to spawn")
	flags.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a CPU profile into this directory")
	return cmd
}

func run(ctx context.Context, opts runOptions) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if opts.frames >= 0 {
		cfg.Engine.MaxFrames = opts.frames
	}
	if opts.entities < 0 {
		return fmt.Errorf("entities must not be negative, got %d", opts.entities)
	}

	if opts.cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.cpuProfile), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	app, cleanup := injector.InitializeApp(cfg)
	defer cleanup()

	if _, err := setupDemo(ctx, app, opts.entities); err != nil {
		return fmt.Errorf("setup demo scene: %w", err)
	}

	app.Logger.Info("Running scene",
		log.Int("entities", opts.entities),
		log.String("hasher", cfg.Scene.Hasher),
		log.Int("max_frames", cfg.Engine.MaxFrames),
	)
	return app.Loop.Run(ctx)
}
