package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hervehildenbrand/mtuprobe/internal/config"
	"github.com/hervehildenbrand/mtuprobe/internal/display"
	"github.com/hervehildenbrand/mtuprobe/internal/export"
	"github.com/hervehildenbrand/mtuprobe/internal/logging"
	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
	"github.com/hervehildenbrand/mtuprobe/internal/ping"
)

const flagConfig = "config"

// NewRootCmd creates and returns the root cobra command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "mtuprobe [flags] <address>",
		Short: "Discover the path MTU to a host",
		Long: `mtuprobe finds the largest ICMP payload that reaches a host without
fragmentation by bisecting over payload sizes with the Don't Fragment bit set,
and reports the matching ethernet MTU.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("address must not be empty")
			}

			changed := changedFlags(cmd.Flags())
			if err := loadLayers(&cfg, configPath, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Format != "" {
				if _, err := export.NewExporter(export.Format(cfg.Format)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Address = args[0]

			if cfg.DryRun {
				// Just validate args and return
				return nil
			}

			cmd.SilenceUsage = true
			return runDiscover(cmd, &cfg)
		},
	}

	// Probe flags
	cmd.Flags().StringVarP(&cfg.PingBin, config.FlagPingBin, "b", cfg.PingBin, "Path or name of the ping binary")
	cmd.Flags().StringVarP(&cfg.Mode, config.FlagMode, "m", cfg.Mode, "Ping dialect: auto|gnu|native")
	cmd.Flags().IntVarP(&cfg.MaxSize, config.FlagMaxSize, "s", cfg.MaxSize, "Upper bound of the payload search in bytes")
	cmd.Flags().IntVarP(&cfg.Count, config.FlagCount, "c", cfg.Count, "Echo requests per probed size")

	// Display flags
	cmd.Flags().BoolVarP(&cfg.Quiet, config.FlagQuiet, "q", false, "Print only the largest payload size")
	cmd.Flags().BoolVar(&cfg.TUI, config.FlagTUI, false, "Interactive view of the search")
	cmd.Flags().BoolVar(&cfg.NoColor, config.FlagNoColor, false, "Disable colors")

	// Export flags
	cmd.Flags().StringVarP(&cfg.Output, config.FlagOutput, "o", "", "Export report to file (json/csv/txt)")
	cmd.Flags().StringVar(&cfg.Format, config.FlagFormat, "", "Explicit export format")

	// Other flags
	cmd.Flags().StringVar(&configPath, flagConfig, "", "Config file (default ~/.mtuprobe/config.toml)")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Debug logs on stderr")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Validate args without probing")

	return cmd
}

// changedFlags returns the names of flags set on the command line.
func changedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

// loadLayers applies the config file and MTUPROBE_* variables under the
// flags. A missing default config file is not an error; an explicit one is.
func loadLayers(cfg *config.Config, path string, changed map[string]bool) error {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path != "" && (changed[flagConfig] || config.FileExists(path)) {
		fc, err := config.LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		config.ApplyFileConfig(cfg, fc, changed)
	}

	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// runDiscover probes the target and prints the result.
func runDiscover(cmd *cobra.Command, cfg *config.Config) error {
	// Set up context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	prober, err := newProber(cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := display.NewSimpleRenderer(out, cfg.NoColor)
	discover := newDiscoverFunc(cfg, prober, logger)

	var res *mtu.Result
	switch {
	case cfg.TUI && !cfg.Quiet:
		res, err = display.RunTUI(ctx, out, cfg.Address, cfg.MaxSize, discover)
	case cfg.Quiet:
		res, err = discover(ctx, nil, nil)
	default:
		res, err = discover(ctx, renderer.Progress, nil)
	}

	// Interrupted: no result line.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		var cfgErr *ping.ConfigError
		if errors.As(err, &cfgErr) {
			return cfgErr
		}
		return err
	}

	if cfg.Quiet {
		display.RenderQuiet(out, res)
	} else {
		renderer.RenderResult(res)
	}

	if cfg.Output != "" {
		path, err := export.ExportToFile(cfg.Output, export.Format(cfg.Format), res)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "Results exported to %s\n", path)
		}
	}

	return nil
}

// newProber builds the prober for the configured mode. Native mode fails
// early when raw sockets are not permitted.
func newProber(cfg *config.Config, logger zerolog.Logger) (ping.Prober, error) {
	mode := ping.Mode(cfg.Mode)
	if mode == ping.ModeNative {
		if err := ping.CheckPrivileges(); err != nil {
			return nil, err
		}
	}
	return ping.New(mode, cfg.PingBin, logger)
}

// newDiscoverFunc binds the configuration and prober into a discovery run.
func newDiscoverFunc(cfg *config.Config, prober ping.Prober, logger zerolog.Logger) display.DiscoverFunc {
	return func(ctx context.Context, progress mtu.ProgressFunc, probe mtu.ProbeCallback) (*mtu.Result, error) {
		d, err := mtu.NewDiscoverer(cfg.Discovery(), prober,
			mtu.WithProgress(progress),
			mtu.WithProbeCallback(probe),
			mtu.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return d.Discover(ctx)
	}
}
