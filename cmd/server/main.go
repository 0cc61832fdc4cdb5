package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/georgeshao/results-proxy/internal/api"
	"github.com/georgeshao/results-proxy/internal/config"
	"github.com/georgeshao/results-proxy/internal/relay"
	"github.com/georgeshao/results-proxy/internal/upstream"
)

var (
	v          = config.NewViper()
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "results-proxy",
	Short:         "Serve upstream sheet results sorted newest first, optionally filtered by status.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel)
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
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./results-proxy.yaml or $HOME/results-proxy.yaml)")
	flags.String("upstream-url", "", "upstream endpoint returning {\"results\": [...]}")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("port", "", "listen address for serve, e.g. :8080")
	mustBind(v, "upstream.url", flags.Lookup("upstream-url"))
	mustBind(v, "log.level", flags.Lookup("log-level"))
	mustBind(v, "port", flags.Lookup("port"))

	rootCmd.AddCommand(serveCmd, fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	client := upstream.NewClient(upstream.Config{
		URL:               cfg.Upstream.URL,
		MaxRedirects:      cfg.Upstream.MaxRedirects,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		ReadBufferSize:    cfg.Upstream.ReadBufferSize,
	})
	r := relay.New(client, logger)

	app := api.NewApp(r, api.AppConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		AccessLog:    os.Stdout,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting results proxy",
			zap.String("addr", cfg.Port),
			zap.String("upstream", client.URL()))
		if err := app.Listen(cfg.Port); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
