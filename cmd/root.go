// Package cmd defines the hh-vacancy-crawler command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/app"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/config"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/logging"
)

// appKeyType is the key for storing the run state in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is what the command needs from the wired services. Tests inject a fake.
type App interface {
	Run(ctx context.Context, areaNames []string) (crawler.Summary, error)
	Close()
}

// runState is everything built before the sweep starts.
type runState struct {
	cfg    config.Config
	logger *zap.Logger
	app    App
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

// newLogger is replaced in tests to capture output.
var newLogger = logging.New

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "hh-vacancy-crawler <area> [area...]",
		Short: "Collects hh.ru vacancies for the given areas",
		Long: `hh-vacancy-crawler sweeps every professional role in each named area of
the configured country, stores each listing once per calendar day and reports
progress to a Telegram chat. Area names must match hh.ru exactly, for example
"Москва" or "Республика Марий Эл".`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			application, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				_ = logger.Sync()
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			state := &runState{cfg: cfg, logger: logger, app: application}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, state))
			return nil
		},

		RunE: runSweep,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables override it")
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
