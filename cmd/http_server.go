package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/auth"
	authsqlite "github.com/motorlot/dealerd/internal/auth/sqlite"
	"github.com/motorlot/dealerd/internal/permission"
	permsqlite "github.com/motorlot/dealerd/internal/permission/sqlite"
	"github.com/motorlot/dealerd/internal/store"
	"github.com/motorlot/dealerd/internal/transport/rest"
	"github.com/motorlot/dealerd/internal/user"
	usersqlite "github.com/motorlot/dealerd/internal/user/sqlite"
	"github.com/motorlot/dealerd/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	Store          *store.Manager
	Handle         *store.Handle
	Router         *chi.Mux
	Logger         *slog.Logger
	AuthService    *auth.Service
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	PermHandler    *permission.Handler
	SandboxHandler *store.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handle, deps.AuthService, deps.AuthHandler,
		deps.UserHandler, deps.PermHandler, deps.SandboxHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.Store.Close(); err != nil {
			slog.Error("Store close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.L()

	manager, err := store.Open(config.Database.Path, config.Security.BCryptCost, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	handle := store.NewHandle(manager)

	permService := permission.NewService(permsqlite.NewRepository(handle), lg)
	authService := auth.NewService(authsqlite.NewRepository(handle), permService,
		config.Security.BCryptCost, config.Security.MaxFailedAttempts, lg)
	userService := user.NewService(usersqlite.NewRepository(handle), config.Security.BCryptCost, lg)

	return &Dependencies{
		Config:         config,
		Store:          manager,
		Handle:         handle,
		Router:         chi.NewRouter(),
		Logger:         lg,
		AuthService:    authService,
		AuthHandler:    auth.NewHandler(authService),
		UserHandler:    user.NewHandler(userService),
		PermHandler:    permission.NewHandler(permService),
		SandboxHandler: store.NewHandler(manager),
	}, nil
}
