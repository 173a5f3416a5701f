package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
)

const (
	maxLoadAttempts = 3
	initialBackoff  = 2 * time.Second
)

// ChromeConfig controls the headless Chrome session
type ChromeConfig struct {
	Headless        bool
	ExecPath        string
	LoadTimeout     time.Duration
	SettleDelay     time.Duration
	ReadySelector   string
	NextDaySelector string
}

// ChromeBrowser implements Browser on top of chromedp
type ChromeBrowser struct {
	cfg    ChromeConfig
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewChromeFactory returns a Factory that starts a fresh Chrome per run
func NewChromeFactory(cfg ChromeConfig, logger *zap.Logger) Factory {
	return func(ctx context.Context) (Browser, error) {
		return NewChromeBrowser(ctx, cfg, logger)
	}
}

// NewChromeBrowser starts Chrome and opens a tab. Failures wrap model.ErrSetup.
func NewChromeBrowser(ctx context.Context, cfg ChromeConfig, logger *zap.Logger) (*ChromeBrowser, error) {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.ReadySelector == "" {
		cfg.ReadySelector = "body"
	}
	if cfg.NextDaySelector == "" {
		cfg.NextDaySelector = DefaultNextDaySelector
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run launches the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: failed to start chrome: %w", model.ErrSetup, err)
	}
	logger.Info("chrome session started", zap.Bool("headless", cfg.Headless))

	return &ChromeBrowser{cfg: cfg, ctx: tabCtx, cancel: cancel, logger: logger}, nil
}

// Load navigates to the calendar, retrying with exponential backoff
func (b *ChromeBrowser) Load(ctx context.Context, url string) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := b.run(ctx, b.cfg.LoadTimeout,
			chromedp.Navigate(url),
			chromedp.WaitReady(b.cfg.ReadySelector, chromedp.ByQuery),
			chromedp.Sleep(b.cfg.SettleDelay),
		)
		if err == nil {
			return nil
		}
		lastErr = err
		b.logger.Warn("calendar load failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return fmt.Errorf("failed to load %s after %d attempts: %w", url, maxLoadAttempts, lastErr)
}

// ReadDOM returns the outer HTML of the rendered document
func (b *ChromeBrowser) ReadDOM(ctx context.Context) (string, error) {
	var markup string
	if err := b.run(ctx, b.cfg.LoadTimeout, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return markup, nil
}

// AdvanceDay clicks the next-day arrow and waits for the calendar to re-render
func (b *ChromeBrowser) AdvanceDay(ctx context.Context) error {
	if b.cfg.NextDaySelector == "" {
		return fmt.Errorf("%w: no next-day selector configured", model.ErrTransition)
	}
	err := b.run(ctx, b.cfg.LoadTimeout,
		chromedp.WaitVisible(b.cfg.NextDaySelector, chromedp.ByQuery),
		chromedp.Click(b.cfg.NextDaySelector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Sleep(b.cfg.SettleDelay),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrTransition, err)
	}
	return nil
}

// Close shuts down the tab and the browser process
func (b *ChromeBrowser) Close() error {
	b.cancel()
	b.logger.Info("chrome session closed")
	return nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx
func (b *ChromeBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, timeout+b.cfg.SettleDelay)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
