package app

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/logger"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
	"go.uber.org/zap"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger

	InvoiceRepo    repository.InvoiceRepository
	InvoiceService service.InvoiceService
}

// New creates a new App instance from the config file at path
// (the default location when path is empty). It handles:
// 1. Loading config
// 2. Building the logger
// 3. Creating the API client and repository
// 4. Creating services
func New(ctx context.Context, path string) (*App, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		path = config.DefaultConfigPath()
		cfg, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.ConfigPath = path
	return a, nil
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		ConfigPath: config.DefaultConfigPath(),
		Logger:     log,
	}
	if err := a.connect(); err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

// connect (re)builds the repository and service from the current API config
func (a *App) connect() error {
	client, err := repository.NewClient(a.Config.API.BaseURL,
		repository.WithTimeout(time.Duration(a.Config.API.TimeoutSeconds)*time.Second),
		repository.WithLogger(a.Logger.Named("http")),
	)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	a.InvoiceRepo = repository.NewInvoiceRepo(client)
	a.InvoiceService = service.NewInvoiceService(a.InvoiceRepo, a.Logger.Named("invoices"))
	return nil
}

// Close flushes the logger
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return nil
}

// SaveConfig writes the current configuration and reconnects with it.
// The invoice cache starts empty again after a reconnect.
func (a *App) SaveConfig() error {
	if err := a.connect(); err != nil {
		return err
	}
	return a.Config.Save(a.ConfigPath)
}
