package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/backendhub/internal/config"
	"github.com/zjrosen/backendhub/internal/hub"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/tracing"
)

// defaultConfigPath is where config:init writes and config:set falls back to.
const defaultConfigPath = ".backendhub/config.yaml"

var (
	version       = "dev"
	cfgFile       string
	cfg           config.Config
	debugFlag     bool
	jsonOutput    bool
	qualifierFlag string
	logCleanup    func()
)

var rootCmd = &cobra.Command{
	Use:   "backendhub",
	Short: "Inspect the management backends of this process",
	Long: `backendhub assembles the management backends visible to this process,
detects the runtime environment, and routes read, list and exec requests
across the backends in order.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(*cobra.Command, []string) { teardownLogging() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.backendhub/config.yaml, then ~/.config/backendhub/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also BACKENDHUB_DEBUG=1)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"print JSON instead of text")
	rootCmd.PersistentFlags().StringVarP(&qualifierFlag, "qualifier", "q", "",
		"qualifier appended to the hub resource name, e.g. agent=web")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("qualifier", defaults.Qualifier)
	viper.SetDefault("environment", defaults.Environment)
	viper.SetDefault("report.cache_ttl", defaults.Report.CacheTTL)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("flags", defaults.Flags)

	viper.SetEnvPrefix("BACKENDHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .backendhub/config.yaml (current directory)
		// 2. ~/.config/backendhub/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "backendhub"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	loadConfig()
}

// loadConfig reads the config file chosen by initConfig into cfg.
func loadConfig() {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	cfg = config.Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: decoding config: %v\n", err)
	}
	if qualifierFlag != "" {
		cfg.Qualifier = qualifierFlag
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	if !debugFlag && os.Getenv("BACKENDHUB_DEBUG") == "" {
		return nil
	}

	if cfg.Log.Path != "" {
		cleanup, err := log.Init(cfg.Log.Path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
	} else {
		log.InitWriter(cmd.ErrOrStderr())
	}
	if !debugFlag {
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	}
	log.Debug(log.CatConfig, "backendhub starting", "config", viper.ConfigFileUsed(), "version", version)
	return nil
}

func teardownLogging() {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	log.Reset()
}

// withHub builds the tracing provider and a hub from cfg, runs fn and tears
// both down. Resources registered by fn are unregistered afterwards.
func withHub(ctx context.Context, fn func(ctx context.Context, h *hub.Hub) error) (err error) {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tc := cfg.Tracing
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if shutdownErr := provider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", shutdownErr)
		}
	}()

	h, err := hub.New(cfg, hub.WithTracer(provider.Tracer()))
	if err != nil {
		return err
	}
	defer func() {
		if unregErr := h.UnregisterAll(); unregErr != nil && err == nil {
			err = unregErr
		}
		h.Close()
	}()

	return fn(ctx, h)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
