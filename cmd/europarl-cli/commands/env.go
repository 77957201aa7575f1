package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/cache"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/chrono"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/scrapers/europarl"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// env holds everything a command needs, built from the config and global flags.
type env struct {
	config  Config
	tel     telemetry.API
	time    chrono.TimeAPI
	client  *europarl.Client
	service *votes.Service
	// store is always open, caching additionally depends on --no-cache.
	store *cache.Store
}

func setup(cmd *cobra.Command) *env {
	config, err := readConfig(configPath)
	if err != nil {
		fatal("failed to read config", err)
	}

	tel := telemetry.SlogAPI{}
	clock, err := chrono.NewStandardTime()
	if err != nil {
		fatal("failed to load timezone", err)
	}

	client, err := europarl.NewClient(europarl.Options{
		ApiUrl:            config.Europarl.ApiUrl,
		SiteUrl:           config.Europarl.SiteUrl,
		Timeout:           time.Duration(config.Europarl.TimeoutSeconds) * time.Second,
		RequestsPerSecond: config.Europarl.RequestsPerSecond,
		CloudflareBypass:  config.Europarl.CloudflareBypass,
	}, tel, clock)
	if err != nil {
		fatal("failed to create europarl client", err)
	}

	store, err := cache.Open(cmd.Context(), config.Cache, tel, clock)
	if err != nil {
		fatal("failed to open cache", err)
	}

	e := &env{
		config: config,
		tel:    tel,
		time:   clock,
		client: client,
		store:  store,
	}
	e.service = votes.NewService(client, client, cachedRoster{inner: client, store: e.cache()}, tel, votes.Options{
		ApiUrl:  config.Europarl.ApiUrl,
		SiteUrl: config.Europarl.SiteUrl,
	})
	return e
}

// cache returns the store used for caching, nil when --no-cache is set.
func (e *env) cache() *cache.Store {
	if noCache {
		return nil
	}
	return e.store
}

func (e *env) Close() {
	err := e.store.Close()
	if err != nil {
		slog.Warn("failed to close cache", "err", err)
	}
}

// cachedRoster keeps rosters in the cache, they change a few times per term at most.
type cachedRoster struct {
	inner votes.RosterProvider
	store *cache.Store
}

func (r cachedRoster) LoadRoster(ctx context.Context, limit, term int) ([]votes.Member, error) {
	return cache.Cached(ctx, r.store, "roster", func(ctx context.Context) ([]votes.Member, error) {
		return r.inner.LoadRoster(ctx, limit, term)
	}, limit, term)
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
