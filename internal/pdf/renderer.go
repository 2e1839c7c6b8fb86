package pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"cv-builder/internal/config"
	"cv-builder/internal/pkg/logger"
)

// Renderer prints an HTML document to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

var ErrRendererClosed = errors.New("pdf renderer closed")

// Chrome renders through one shared headless browser. Each render opens its
// own tab; at most MaxTabs run at once.
type Chrome struct {
	cfg config.PDFConfig
	log *logger.Logger

	tabs chan struct{}

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool
}

func NewChrome(cfg config.PDFConfig, log *logger.Logger) *Chrome {
	if cfg.MaxTabs <= 0 {
		cfg.MaxTabs = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	return &Chrome{
		cfg:  cfg,
		log:  log.Named("pdf"),
		tabs: make(chan struct{}, cfg.MaxTabs),
	}
}

// browser starts Chrome on first use.
func (c *Chrome) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrRendererClosed
	}
	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	c.allocCancel, c.browserCtx, c.browserCancel = allocCancel, browserCtx, browserCancel
	c.log.Info("headless chrome started", "max_tabs", c.cfg.MaxTabs)
	return browserCtx, nil
}

func (c *Chrome) Render(ctx context.Context, html []byte) ([]byte, error) {
	select {
	case c.tabs <- struct{}{}:
		defer func() { <-c.tabs }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, c.cfg.RenderTimeout)
	defer timeoutCancel()

	// Abandon the tab when the caller gives up.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var out []byte
	started := time.Now()
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	c.log.Debug("pdf rendered", "bytes", len(out), "took", time.Since(started))
	return out, nil
}

func (c *Chrome) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.browserCancel != nil {
		c.browserCancel()
		c.allocCancel()
		c.browserCtx = nil
	}
}
