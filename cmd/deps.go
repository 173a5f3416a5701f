package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/browser"
	"github.com/jjenkins/courtwatch/internal/config"
	"github.com/jjenkins/courtwatch/internal/logger"
	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/notify"
	"github.com/jjenkins/courtwatch/internal/obs"
	"github.com/jjenkins/courtwatch/internal/service"
	"github.com/jjenkins/courtwatch/internal/store"
	"github.com/jjenkins/courtwatch/internal/store/memstore"
)

// app holds the wired services shared by the subcommands
type app struct {
	cfg    *config.Config
	loc    *time.Location
	logger *zap.Logger

	db            *sql.DB
	slots         service.SlotRepository
	subscriptions service.SubscriptionRepository
	sent          service.NotificationLog
	runs          service.RunRecorder

	availability *service.Availability
	metrics      *service.MetricsService

	telegram   *tgbotapi.BotAPI
	dispatcher *notify.Dispatcher

	closers []func() error
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newApp loads configuration and wires storage, tracing and notification delivery
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc, logger: zl}
	a.closers = append(a.closers, func() error {
		_ = zl.Sync()
		return nil
	})

	shutdown, err := obs.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(ctx)
	})

	if err := a.openStorage(); err != nil {
		a.close()
		return nil, err
	}

	a.availability = service.NewAvailability(a.slots, loc)
	a.metrics = service.NewMetricsService(a.runs, a.slots, a.subscriptions, zl)

	return a, nil
}

func (a *app) openStorage() error {
	switch a.cfg.Storage.Driver {
	case "memory":
		a.logger.Warn("using in-memory storage; snapshot and subscriptions are lost on exit")
		subs := memstore.NewSubscriptionStore()
		a.slots = memstore.NewSlotStore()
		a.subscriptions = subs
		a.sent = subs
		a.runs = memstore.NewRunStore()
		return nil
	default:
		db, err := store.NewDB(a.cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrSetup, err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		a.slots = store.NewSlotStore(db)
		a.subscriptions = store.NewSubscriptionStore(db)
		a.sent = store.NewNotificationStore(db)
		a.runs = store.NewRunStore(db)
		return nil
	}
}

// telegramBot connects to Telegram once and reuses the session
func (a *app) telegramBot() (*tgbotapi.BotAPI, error) {
	if a.telegram != nil {
		return a.telegram, nil
	}
	bot, err := notify.NewTelegramBot(a.cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	a.telegram = bot
	return bot, nil
}

// notifier builds the dispatcher over the configured transport
func (a *app) notifier() (*notify.Dispatcher, error) {
	if a.dispatcher != nil {
		return a.dispatcher, nil
	}

	var messenger notify.Messenger
	switch a.cfg.Notify.Transport {
	case "telegram":
		bot, err := a.telegramBot()
		if err != nil {
			return nil, err
		}
		messenger = notify.NewTelegramMessenger(bot)
	case "amqp":
		m, err := notify.NewAMQPMessenger(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, m.Close)
		messenger = m
	default:
		messenger = notify.NewConsoleMessenger(a.logger)
	}

	a.dispatcher = notify.NewDispatcher(messenger, a.logger)
	return a.dispatcher, nil
}

// monitor wires a Monitor over headless Chrome
func (a *app) monitor() (*service.Monitor, error) {
	dispatcher, err := a.notifier()
	if err != nil {
		return nil, err
	}

	sc := a.cfg.Scraper
	selectors := service.DefaultSelectors()
	overrideSelectors(&selectors, sc.Selectors)

	factory := browser.NewChromeFactory(browser.ChromeConfig{
		Headless:        sc.Headless,
		ExecPath:        sc.ChromePath,
		LoadTimeout:     sc.LoadTimeout,
		SettleDelay:     sc.SettleDelay,
		ReadySelector:   sc.Selectors.Ready,
		NextDaySelector: sc.Selectors.NextDay,
	}, a.logger)

	after, err := model.ParseHour(a.cfg.Notify.BroadcastAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid notify.broadcast_after: %w", err)
	}

	extractor := service.NewExtractor(sc.BaseURL, service.NewParser(selectors), a.loc, a.logger)
	return service.NewMonitor(factory, extractor, a.slots, dispatcher, a.metrics, sc.MaxDays, service.BroadcastConfig{
		Enabled:    a.cfg.Notify.Enabled,
		After:      after,
		Recipients: a.cfg.Notify.BroadcastTo,
		MaxSlots:   a.cfg.Notify.MaxSlots,
	}, a.logger), nil
}

// reconciler wires the subscription sweep
func (a *app) reconciler() (*service.Reconciler, error) {
	dispatcher, err := a.notifier()
	if err != nil {
		return nil, err
	}
	return service.NewReconciler(a.subscriptions, a.availability, dispatcher, a.sent, a.metrics, service.ReconcilerConfig{
		MaxSlots: a.cfg.Notify.MaxSlots,
		Repeat:   service.RepeatPolicy(a.cfg.Notify.Repeat),
		Location: a.loc,
	}, a.logger), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
}

// mustApp wires the app or exits
func mustApp(ctx context.Context) *app {
	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	return a
}

func overrideSelectors(dst *service.Selectors, src config.SelectorsConfig) {
	set := func(field *string, value string) {
		if value != "" {
			*field = value
		}
	}
	set(&dst.Cell, src.Cell)
	set(&dst.AvailableClass, src.AvailableClass)
	set(&dst.TimeAttr, src.TimeAttr)
	set(&dst.TimePrefix, src.TimePrefix)
	set(&dst.CourtBlock, src.CourtBlock)
	set(&dst.CourtName, src.CourtName)
	set(&dst.CourtAttributes, src.CourtAttributes)
}
