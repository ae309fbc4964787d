package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/docstore"
	"github.com/nikolayk812/storefront/internal/events"
	"github.com/nikolayk812/storefront/internal/imagestore"
	"github.com/nikolayk812/storefront/internal/memstore"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/nikolayk812/storefront/internal/textgen"
	"go.uber.org/zap"
)

// app holds the wired components of one command invocation.
type app struct {
	carts     port.CartRepository
	products  port.ProductRepository
	generator *textgen.Generator
	catalog   *catalog.Service
	front     *storefront.Storefront

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	if err := a.wireStore(ctx, cfg); err != nil {
		_ = a.close()
		return nil, err
	}

	generator, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Debug("text generation disabled", zap.Error(err))
	}
	a.generator = generator

	catalogOpts := []catalog.Option{catalog.WithLogger(logger)}
	if generator != nil {
		catalogOpts = append(catalogOpts, catalog.WithSloganWriter(generator))
	}

	if cfg.ProductImageBucket != "" {
		client, err := imagestore.NewGCSClient(ctx, cfg.CredentialsFile)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)

		images, err := imagestore.NewGCS(client, cfg.ProductImageBucket, logger)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		catalogOpts = append(catalogOpts, catalog.WithImageStore(images))
	}

	a.catalog = catalog.NewService(a.products, catalogOpts...)

	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	deps := storefront.Deps{
		Sessions: auth.NewSessions(authenticator, logger),
		Carts:    a.carts,
		Catalog:  a.catalog,
		Logger:   logger,
	}
	if generator != nil {
		deps.Generator = generator
	}

	if cfg.RabbitMQURL != "" {
		publisher, closeFn, err := events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		a.closers = append(a.closers, closeFn)
		deps.Publisher = publisher
	}

	a.front, err = storefront.New(deps)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("storefront.New: %w", err)
	}

	return a, nil
}

func (a *app) wireStore(ctx context.Context, cfg config.Config) error {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		a.carts = repository.NewCart(pool)
		a.products = repository.NewProduct(pool)

	case config.BackendFirestore:
		client, err := docstore.NewClient(ctx, cfg.GCPProjectID, cfg.CredentialsFile)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)

		a.carts = docstore.NewCartRepositoryFS(client, cfg.AppID, cfg.Currency)
		a.products = docstore.NewProductRepositoryFS(client, cfg.AppID, cfg.Currency)

	case config.BackendMemory:
		store := memstore.New()
		a.carts = store.Carts()
		a.products = store.Products()

	default:
		return fmt.Errorf("backend[%s] is not supported", cfg.Backend)
	}

	return nil
}

func newAuthenticator(ctx context.Context, cfg config.Config) (port.Authenticator, error) {
	if cfg.Backend != config.BackendFirestore {
		return auth.NewLocalAuthenticator(), nil
	}

	return auth.NewFirebaseAuthenticator(ctx, cfg.GCPProjectID, cfg.CredentialsFile)
}

func newGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (*textgen.Generator, error) {
	apiKey, err := cfg.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	var transport port.TextTransport

	switch cfg.TextgenTransport {
	case config.TransportGenAI:
		transport, err = textgen.NewGenAITransport(ctx, apiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
	default:
		httpCfg := textgen.DefaultHTTPConfig(apiKey)
		httpCfg.BaseURL = cfg.GeminiBaseURL
		httpCfg.Model = cfg.GeminiModel
		transport = textgen.NewHTTPTransport(httpCfg)
	}

	return textgen.NewGenerator(transport, textgen.WithLogger(logger)), nil
}

func (a *app) close() error {
	var errs []error

	if a.front != nil {
		if err := a.front.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
