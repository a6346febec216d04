// Package app wires configuration, storage, gateways and the HTTP server
// into one runnable unit.
package app

import (
	"context"
	"fmt"

	"examrecord/internal/auth"
	excfg "examrecord/internal/config"
	"examrecord/internal/gateway/openopus"
	"examrecord/internal/gateway/wikidata"
	"examrecord/internal/logger"
	"examrecord/internal/report"
	"examrecord/internal/resolver"
	"examrecord/internal/seed"
	"examrecord/internal/store/gormstore"
	apihttp "examrecord/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App owns the process-level dependencies.
type App struct {
	cfg      *excfg.Config
	store    *gormstore.Store
	openopus *openopus.Client
	server   *apihttp.Server
}

// NewApp builds the application from configuration without starting it.
func NewApp(cfg *excfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	store, err := gormstore.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store failed: %w", err)
	}
	wikidataClient, err := wikidata.NewClient(cfg.Wikidata)
	if err != nil {
		return nil, err
	}
	openopusClient, err := openopus.NewClient(cfg.Openopus)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(store, auth.NewTokenIssuer(cfg.Auth), cfg.Auth.GuestEmail)
	reportService := report.NewService(store, resolver.New(wikidataClient), cfg.Policy)

	router := &apihttp.Router{
		Reports:          reportService,
		Auth:             authService,
		Store:            store,
		Wikidata:         wikidataClient,
		Openopus:         openopusClient,
		MaxSearchResults: cfg.Search.MaxResults,
	}
	server, err := apihttp.NewServer(cfg.App.HTTPAddr, router, authService)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, store: store, openopus: openopusClient, server: server}, nil
}

// Run seeds the catalog and serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	catalog, err := seed.LoadCatalog(a.cfg.Seed.Path)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, a.store, catalog); err != nil {
		return err
	}
	if a.cfg.Seed.ImportComposers {
		seed.ImportComposers(ctx, a.store, a.openopus)
	}

	logger.Infof("serving API on %s (env=%s)", a.server.Addr(), a.cfg.App.Env)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}
