package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/mpsc/internal/config"
	"github.com/Iron-Ham/mpsc/internal/event"
	"github.com/Iron-Ham/mpsc/internal/logging"
	"github.com/Iron-Ham/mpsc/internal/metrics"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

var rootCmd = &cobra.Command{
	Use:   "mpsc",
	Short: "Multi-producer single-consumer channel toolkit",
	Long: `mpsc exercises an unbounded multi-producer, single-consumer channel
whose lifetime is driven by independently owned sender and receiver handles.

Use bench to measure fan-in throughput, demo to walk through the channel
lifecycle, and watch to stream filesystem changes from several trees
through one channel.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/mpsc/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().Bool("strict-receiver", false, "refuse a second live receiver instead of warning")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("channel.strict_receiver", rootCmd.PersistentFlags().Lookup("strict-receiver"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MPSC")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MPSC_BENCH_PRODUCERS for bench.producers
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// runtime bundles what every command needs to open instrumented channels.
type runtime struct {
	cfg       *config.Config
	logger    *logging.Logger
	bus       *event.Bus
	collector *metrics.Collector
	registry  *prometheus.Registry
}

// newRuntime loads and validates config, opens the logger and, when
// enabled, starts the metrics server until ctx is done.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		bus:    event.NewBus(event.WithLogger(logger.WithComponent("event"))),
	}

	if cfg.Metrics.Enabled {
		rt.collector = metrics.New()
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(rt.collector)
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, rt.registry, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}
	return rt, nil
}

// channelOptions returns the options for a named channel wired to the
// runtime's logger, bus and metrics.
func (rt *runtime) channelOptions(name string) []mpsc.Option {
	opts := []mpsc.Option{
		mpsc.WithName(name),
		mpsc.WithLogger(rt.logger),
		mpsc.WithBus(rt.bus),
		mpsc.WithFreelistLimit(rt.cfg.Channel.FreelistLimit),
	}
	if rt.cfg.Channel.StrictReceiver {
		opts = append(opts, mpsc.WithStrictReceiver())
	}
	if rt.collector != nil {
		opts = append(opts, mpsc.WithObserver(rt.collector.Observer(name)))
	}
	return opts
}

// track registers a channel's gauges when metrics are enabled.
func (rt *runtime) track(name string, stats func() mpsc.Stats) {
	if rt.collector != nil {
		rt.collector.Track(name, stats)
	}
}

func (rt *runtime) Close() error {
	return rt.logger.Close()
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the width of stdout, or fallback when unknown.
func terminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
