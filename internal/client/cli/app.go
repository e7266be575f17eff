// Package cli is the interactive meeting-room console: a small REPL over
// the device core (session guard, document cache, preview resolver) used on
// dashboards without a full graphical shell and in integration rehearsals.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/preview"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/remote"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/session"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/store"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Store
	remote   remote.Client
	guard    *session.Guard
	resolver *preview.Resolver
	cacher   *preview.Cacher
	docs     *preview.Manager
	reader   *bufio.Reader

	// kicked carries the forced-logout reason from the guard's dispatcher
	// to the REPL, which blocks until the user acknowledges it.
	kicked chan session.LogoutReason

	stopGuard func()
	stopFeed  context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	st, err := store.InitDatabase(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	client := remote.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)

	a := &App{
		config:   cfg,
		logger:   logger,
		store:    st,
		remote:   client,
		resolver: preview.NewResolver(st.Blobs, logger),
		cacher:   preview.NewCacher(st.Blobs, client, logger),
		docs:     preview.NewManager(st.Blobs, client, logger),
		reader:   bufio.NewReader(os.Stdin),
		kicked:   make(chan session.LogoutReason, 1),
	}

	a.guard = session.NewGuard(st.KV, client, cfg.SessionPollInterval, func(r session.LogoutReason) {
		select {
		case a.kicked <- r:
		default:
		}
	}, logger)

	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.teardown()
	a.Main(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.guard.State() == session.StateActive
}

// startFeed connects the realtime feed and routes its events: account
// changes wake the session guard, document arrivals warm the cache.
func (a *App) startFeed(ctx context.Context, accessToken string) {
	feedCtx, cancel := context.WithCancel(ctx)
	a.stopFeed = cancel

	sub := remote.NewSubscriber(remote.WSURL(a.config.ServerURL, accessToken), func(ev events.Event) {
		a.routeEvent(feedCtx, ev)
	}, a.logger)
	go sub.Run(feedCtx)
}

func (a *App) routeEvent(ctx context.Context, ev events.Event) {
	switch ev.Kind {
	case events.KindUserUpdated:
		a.guard.OnRemoteUserChange()
	case events.KindDocumentCreated:
		a.cacher.HandleEvent(ctx, ev)
	}
}

func (a *App) teardown() {
	if a.stopFeed != nil {
		a.stopFeed()
	}
	if a.stopGuard != nil {
		a.stopGuard()
	}
	a.cacher.Drain()
	if err := a.store.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing local store", "error", err)
	}
	_ = a.remote.Close()
}
