package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gxmovies/storefront-client/internal/api/http"
	"github.com/gxmovies/storefront-client/internal/api/http/handlers"
	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/config"
	"github.com/gxmovies/storefront-client/internal/domain"
	"github.com/gxmovies/storefront-client/internal/events"
	"github.com/gxmovies/storefront-client/internal/gateway"
	"github.com/gxmovies/storefront-client/internal/notice"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/realtime"
	"github.com/gxmovies/storefront-client/internal/service"
	"github.com/gxmovies/storefront-client/internal/session"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
	"github.com/gxmovies/storefront-client/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := tokenstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open token store", zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	board := notice.NewBoard(dispatcher, cfg.Session.AutoAcknowledge, logger)
	defer board.Listen(dispatcher)()
	location := session.NewLocation(auth.LoginPath)

	manager := session.NewManager(store, auth.NewDecoder(), dispatcher, logger)
	manager.SetFetchTimeout(cfg.Session.NameFetchTimeout())
	invalidator := session.NewInvalidator(manager, store, board, location, metrics, logger)

	pipeline := gateway.New(&http.Client{Timeout: cfg.API.RequestTimeout()}, gateway.Options{
		Tokens:      store,
		Invalidator: invalidator,
		RateLimits:  board,
		Metrics:     metrics,
		Logger:      logger,
	})
	svc := service.New(service.NewClient(cfg.API.BaseURL, pipeline, logger))
	manager.SetUserLookup(svc.Users)

	manager.Init(ctx)
	if manager.Identity() != nil {
		manager.RefreshDisplayName(ctx)
		location.Navigate(homeFor(manager))
	}

	watchdog := session.NewInactivityWatchdog(cfg.Session.InactivityTimeout(), invalidator)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, watchdog, cfg.API.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Session:  handlers.NewSessionHandler(svc.Users, manager, location),
		Notices:  handlers.NewNoticeHandler(board),
		Shopper:  handlers.NewShopperHandler(svc, manager),
		Admin:    handlers.NewAdminHandler(svc),
		Identity: manager,
		Location: location,
		Metrics:  metrics,
	})

	loops := []worker.Named{
		{Name: "invalidator", Loop: worker.LoopFunc(invalidator.Run)},
		{Name: "watchdog", Loop: worker.LoopFunc(watchdog.Run)},
		{Name: "shell", Loop: worker.LoopFunc(func(ctx context.Context) error {
			return serve(ctx, app, cfg.Shell.Addr(), logger)
		})},
	}
	if cfg.API.NotificationsURL != "" {
		// The stream is long-lived, so it gets a client without the per-request timeout.
		stream := realtime.NewStream(cfg.API.NotificationsURL, &http.Client{}, cfg.Session.ReconnectDelay(), dispatcher, metrics, logger)
		loops = append(loops, worker.Named{Name: "notifications", Loop: worker.LoopFunc(stream.Run)})
	}

	logger.Info("client started",
		zap.String("shell", cfg.Shell.Addr()),
		zap.String("api", cfg.API.BaseURL),
		zap.String("token_store", string(cfg.Storage.Backend)),
	)
	if err := worker.Run(ctx, logger, loops...); err != nil {
		logger.Error("client stopped", zap.Error(err))
	}
	manager.Wait()
	logger.Info("shutdown complete")
}

// serve runs the console listener until ctx is done.
func serve(ctx context.Context, app *fiber.App, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down console", zap.String("addr", addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

func homeFor(manager *session.Manager) string {
	if identity := manager.Identity(); identity != nil && identity.Role == domain.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/user/home"
}
