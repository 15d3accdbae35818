package main

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-nexus/internal/clock"
	"github.com/Shivanand-hulikatti/event-nexus/internal/config"
	"github.com/Shivanand-hulikatti/event-nexus/internal/database"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/notify"
	"github.com/Shivanand-hulikatti/event-nexus/internal/repository"
	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
	"github.com/Shivanand-hulikatti/event-nexus/internal/tracing"
)

// app is the wired service layer shared by the serve and events commands.
type app struct {
	events   *service.EventService
	profiles *service.ProfileService
	admin    *service.AdminService
	hub      *notify.Hub
	tracer   *tracing.Provider
	close    func()
}

// openCatalog returns the configured event source and the seed profile.
// The profile always comes from the fixture; only events move to Postgres.
func openCatalog(ctx context.Context, c config.Config) (service.EventStore, model.Profile, func(), error) {
	fx, err := repository.LoadFixture(c.Catalog.FixturePath)
	if err != nil {
		return nil, model.Profile{}, nil, err
	}

	switch c.Catalog.Source {
	case config.SourcePostgres:
		pool, err := database.NewPool(ctx, c.Database)
		if err != nil {
			return nil, model.Profile{}, nil, fmt.Errorf("database: %w", err)
		}
		log.Info(log.CatDB, "connected to postgres", "host", c.Database.Host, "db", c.Database.DBName)
		return repository.NewEventRepository(pool), fx.Profile, pool.Close, nil
	default:
		catalog, err := repository.NewCatalogRepository(fx.Events)
		if err != nil {
			return nil, model.Profile{}, nil, err
		}
		source := c.Catalog.FixturePath
		if source == "" {
			source = "embedded"
		}
		log.Info(log.CatCatalog, "loaded fixture catalog", "source", source, "events", len(fx.Events))
		return catalog, fx.Profile, func() {}, nil
	}
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	loc, err := c.Catalog.Location()
	if err != nil {
		return nil, err
	}

	provider, err := tracing.NewProvider(ctx, c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	store, profile, closeStore, err := openCatalog(ctx, c)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	clk := clock.NewSystem()
	hub := notify.NewHub()
	viewers := repository.NewViewerRepository(c.Session.TTL, c.Session.CleanupInterval)
	sessions := service.NewSessions(viewers, profile, clk)
	events := service.NewEventService(store, sessions, hub, clk,
		service.WithLocation(loc),
		service.WithTracer(provider.Tracer()),
	)

	return &app{
		events:   events,
		profiles: service.NewProfileService(events, hub, clk),
		admin:    service.NewAdminService(events, hub, clk),
		hub:      hub,
		tracer:   provider,
		close: func() {
			hub.Close()
			closeStore()
			if err := provider.Shutdown(context.Background()); err != nil {
				log.ErrorErr(log.CatConfig, "tracing shutdown", err)
			}
		},
	}, nil
}
