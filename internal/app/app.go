// Package app builds the long-lived services a sweep needs from configuration
// and owns their shutdown.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/clock/system"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/config"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/credentials"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/hh"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/id/uuid"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/logging"
	lognotify "github.com/JakeFAU/hh-vacancy-crawler/internal/notify/log"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/notify/telegram"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/storage/memory"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/storage/postgres"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/worker"
)

// App holds the services wired for one run.
type App struct {
	logger   *zap.Logger
	client   *hh.Client
	notifier crawler.Notifier
	store    crawler.VacancyStore
	worker   *worker.Worker
	closers  []func()
}

// New wires the API client, notifier, document store and orchestrator from
// cfg. It fails fast when a service cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{logger: logger}

	creds := newCredentialStore(cfg.Credentials)
	if creds.AccessToken() == "" {
		logger.Warn("no access token configured; the first request will trigger a refresh")
	}

	client, err := hh.New(hh.Config{
		BaseURL:   cfg.HH.BaseURL,
		OAuthURL:  cfg.HH.OAuthURL,
		Country:   cfg.HH.Country,
		PerPage:   cfg.HH.PerPage,
		UserAgent: cfg.HH.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	}, creds, logger.Named("hh"))
	if err != nil {
		return nil, fmt.Errorf("init hh client: %w", err)
	}
	a.client = client

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	a.notifier = notifier

	if err := a.initStore(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.worker = worker.New(client, a.store, notifier, system.New(), uuid.New(), logger.Named("worker"))
	return a, nil
}

func newCredentialStore(cfg config.CredentialsConfig) *credentials.Store {
	var persister credentials.Persister
	if cfg.EnvFile != "" {
		persister = credentials.NewDotenvPersister(cfg.EnvFile, config.EnvAccessToken)
	}
	return credentials.NewStore(credentials.Credentials{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, persister)
}

func newNotifier(cfg config.Config, logger *zap.Logger) (crawler.Notifier, error) {
	if cfg.Telegram.Token == "" {
		logger.Info("no bot token configured; progress goes to the log")
		return lognotify.New(logger.Named("progress")), nil
	}
	return telegram.New(telegram.Config{
		APIURL:  cfg.Telegram.APIURL,
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		Timeout: cfg.HTTPTimeout(),
	}, logger.Named("telegram"))
}

func (a *App) initStore(ctx context.Context, cfg config.Config) error {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.NewVacancyStore(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		a.logger.Info("using postgres document store", zap.String("table", cfg.DB.Table))
		a.store = store
	case config.DriverMemory, "":
		a.logger.Info("using in-memory document store; listings are discarded on exit")
		a.store = memory.NewVacancyStore()
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}

// Run performs one sweep over areaNames.
func (a *App) Run(ctx context.Context, areaNames []string) (crawler.Summary, error) {
	return a.worker.Run(ctx, areaNames)
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
