package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/config"
	httpcontroller "github.com/vadim/campus-market/internal/controller/http"
	convPolicy "github.com/vadim/campus-market/internal/domain/conversation/policy"
	convService "github.com/vadim/campus-market/internal/domain/conversation/service"
	itemPolicy "github.com/vadim/campus-market/internal/domain/item/policy"
	itemService "github.com/vadim/campus-market/internal/domain/item/service"
	orderPolicy "github.com/vadim/campus-market/internal/domain/order/policy"
	orderService "github.com/vadim/campus-market/internal/domain/order/service"
	reportEntity "github.com/vadim/campus-market/internal/domain/report/entity"
	reportPolicy "github.com/vadim/campus-market/internal/domain/report/policy"
	reportService "github.com/vadim/campus-market/internal/domain/report/service"
	userPolicy "github.com/vadim/campus-market/internal/domain/user/policy"
	userService "github.com/vadim/campus-market/internal/domain/user/service"
	httpmw "github.com/vadim/campus-market/internal/httpx/middleware"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	logger     *zap.Logger
	store      *Store
}

// NewApp connects the store and builds the HTTP server
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	store, err := OpenStore(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	logger.Info("store ready", zap.String("driver", cfg.Database.Driver))

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      NewRouter(cfg, store, logger),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// NewRouter wires domain layers over store and registers every route
func NewRouter(cfg config.Config, store *Store, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmw.RequestLogger(logger))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         cfg.CORS.MaxAge,
	}))

	// Services
	users := userService.New(store.Users)
	items := itemService.New(store.Items, cfg.Items.MinTextLength)
	convs := convService.New(store.Conversations, store.Messages)
	orders := orderService.New(store.Orders, cfg.Orders.EnforceTransitions)
	itemReports := reportService.New(store.ItemReports, reportEntity.KindItem)
	userReports := reportService.New(store.UserReports, reportEntity.KindUser)

	// Handlers
	handlers := []interface{ RegisterRoutes(chi.Router) }{
		httpcontroller.NewSwaggerHandler("Campus Market API", OpenAPISpec),
		httpcontroller.NewConversationHandler(convPolicy.New(convs, users, items), logger),
		httpcontroller.NewOrderHandler(orderPolicy.New(orders, items, users), logger),
		httpcontroller.NewItemHandler(itemPolicy.New(items, users), logger),
		httpcontroller.NewUserHandler(userPolicy.New(users, items, convs, orders), logger),
		httpcontroller.NewReportHandler(reportEntity.KindItem, reportPolicy.New(itemReports, users, items), logger),
		httpcontroller.NewReportHandler(reportEntity.KindUser, reportPolicy.New(userReports, users, items), logger),
	}

	r.Get("/healthz", healthHandler)
	r.Get("/readyz", readyHandler(store, logger))
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "not found")
	})

	return r
}

// healthHandler handles liveness checks
func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler reports ready once the store answers a ping
func readyHandler(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		response.OK(w, map[string]string{"status": "ready"})
	}
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.cfg.Server.Address()))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = a.store.Close(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown stops the HTTP server and closes the store
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err := a.store.Close(shutdownCtx); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
