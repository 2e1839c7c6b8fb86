package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/config"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/delivery/http/routes"
)

// BodyLimit caps request bodies; profile photos travel as URLs, not uploads.
const BodyLimit = 2 * 1024 * 1024

type App struct {
	Fiber     *fiber.App
	Container *Container

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the container into a fiber app. Background workers are not
// started until Start.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	c, err := NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: BodyLimit,
	})

	registerGlobalMiddleware(f, c)
	routes.NewRegistry(c.Handlers, c.Middlewares).Register(f)

	return &App{Fiber: f, Container: c}, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())

	errMw := middleware.NewErrorMiddleware(c.Logger, !c.Config.App.IsProduction())
	app.Use(errMw.Middleware())
}

// Start runs the websocket hub and the PDF export worker until Shutdown.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	log := a.Container.Logger

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Container.Hub.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		if err := a.Container.Worker.Run(ctx, a.Container.MQ); err != nil {
			log.Error("export worker stopped", "error", err)
		}
	}()
}

// Shutdown stops accepting requests, drains the workers and closes the
// container.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	if err := a.Container.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
