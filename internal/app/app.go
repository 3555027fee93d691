package app

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/NasaVasa/eventdash/internal/config"
	"github.com/NasaVasa/eventdash/internal/delivery/console"
	"github.com/NasaVasa/eventdash/internal/delivery/telegram"
	"github.com/NasaVasa/eventdash/internal/delivery/web"
	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/infra/api"
	"github.com/NasaVasa/eventdash/internal/infra/db"
	"github.com/NasaVasa/eventdash/internal/infra/log"
	"github.com/NasaVasa/eventdash/internal/infra/statefile"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	// ConsoleScope is the preference scope of the terminal surface.
	ConsoleScope = "console"

	evictionInterval = time.Minute
)

type App struct {
	cfg         config.Config
	logger      *zap.Logger
	registry    *prometheus.Registry
	subscribers domain.SubscriberRepository
	dialer      *api.FeedDialer
	auditor     *usecase.Auditor
	pool        *usecase.WorkspacePool
	relay       *usecase.FeedRelay
	cleanupFn   func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}
	prefs, err := a.openStores()
	if err != nil {
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, api.NewMetrics(a.registry), logger)

	feedURL := cfg.FeedURL
	if feedURL == "" {
		if feedURL, err = api.FeedURL(cfg.APIBaseURL); err != nil {
			return nil, err
		}
	}
	a.dialer = api.NewFeedDialer(feedURL, cfg.FeedReadTimeout, logger)

	a.pool = usecase.NewWorkspacePool(usecase.Deps{
		API:         client,
		Feed:        a.dialer,
		Preferences: prefs,
		Auditor:     a.auditor,
	}, logger)

	logger.Info("eventdash initialized",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("feed_url", feedURL),
		zap.Bool("database", cfg.DatabaseEnabled()),
	)
	return a, nil
}

// openStores picks Postgres when it is configured and the state file
// otherwise. Audit entries are only persisted with a database.
func (a *App) openStores() (domain.PreferenceRepository, error) {
	if a.cfg.DatabaseEnabled() {
		dbConn, err := db.Open(a.cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.subscribers = db.NewSubscriberRepository(dbConn)
		a.auditor = usecase.NewAuditor(db.NewAuditRepository(dbConn), a.logger)
		a.cleanupFn = func() error { return db.Close(dbConn) }
		return db.NewPreferenceRepository(dbConn), nil
	}

	store, err := statefile.Open(a.cfg.StateFile, a.logger)
	if err != nil {
		return nil, err
	}
	a.subscribers = store
	a.auditor = usecase.NewAuditor(nil, a.logger)
	return store, nil
}

// RunConsole drives the terminal UI on the console workspace.
func (a *App) RunConsole(ctx context.Context) error {
	a.logger.Info("console starting")
	ctx = usecase.WithActor(ctx, ConsoleScope)
	return console.Run(ctx, a.pool.Get(ctx, ConsoleScope), a.cfg.ExportDir, a.logger)
}

// Serve runs the web dashboard until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	key, err := a.cookieKey()
	if err != nil {
		return err
	}
	server, err := web.NewServer(a.cfg.ListenAddr, a.pool, a.auditor, key, a.cfg.CookieSecure, a.registry, a.logger)
	if err != nil {
		return err
	}
	go a.pool.RunEviction(ctx, evictionInterval, a.cfg.SessionIdle)
	return server.Run(ctx)
}

// cookieKey decodes the configured hex key. Without one a random key is
// used and sessions end with the process.
func (a *App) cookieKey() ([]byte, error) {
	if a.cfg.CookieKey == "" {
		a.logger.Warn("EVENTDASH_COOKIE_KEY is not set, sessions will not survive a restart")
		return securecookie.GenerateRandomKey(32), nil
	}
	key, err := hex.DecodeString(a.cfg.CookieKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode EVENTDASH_COOKIE_KEY")
	}
	if len(key) < 32 {
		return nil, errors.Newf("EVENTDASH_COOKIE_KEY must be at least 32 bytes, got %d", len(key))
	}
	return key, nil
}

// RunBot polls Telegram until ctx is done. The feed relay starts right away
// when chats are already subscribed.
func (a *App) RunBot(ctx context.Context) error {
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}
	botAPI, err := telegram.NewAPI(a.cfg.TelegramBotToken)
	if err != nil {
		return errors.Wrap(err, "connect telegram")
	}

	notifier := telegram.NewNotifier(botAPI, a.logger)
	a.relay = usecase.NewFeedRelay(a.subscribers, a.dialer, notifier, a.logger)
	handlers := telegram.NewHandlers(a.pool, usecase.NewSubscriberUsecase(a.subscribers), a.relay, a.logger)
	bot := telegram.NewBot(botAPI, handlers, a.cfg.TelegramPollTimeout)

	a.logger.Info("bot starting")
	subscribers, err := a.subscribers.List(ctx)
	if err != nil {
		a.logger.Warn("failed to list subscribers", zap.Error(err))
	}
	if len(subscribers) > 0 {
		if err := a.relay.Start(ctx); err != nil {
			a.logger.Warn("failed to start feed relay", zap.Error(err))
		}
	}

	a.logger.Info("bot started", zap.Int("subscribers", len(subscribers)))
	return bot.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("eventdash shutting down")
	if a.relay != nil {
		a.relay.Stop()
	}
	a.pool.Close()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
