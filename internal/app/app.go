package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"esk/training-app/internal/config"
	"esk/training-app/internal/repository/postgres"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gorm.io/gorm"
)

// New assembles the server application. Start-up runs migrations, ensures the
// bootstrap invite and then starts listening, in that order.
func New(configPath string) *fx.App {
	return fx.New(
		ConfigModule(configPath),
		DatabaseModule,
		RepositoryModule,
		StorageModule,
		ServiceModule,
		HTTPModule,

		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With("component", "fx")}
		}),

		fx.Invoke(registerMigrations),
		fx.Invoke(registerBootstrap),
		fx.Invoke(func(*http.Server) {}),
	)
}

func registerMigrations(lc fx.Lifecycle, db *gorm.DB, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return postgres.RunMigrations(db, logger)
		},
	})
}

func registerBootstrap(lc fx.Lifecycle, auth service.AuthService, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := auth.EnsureBootstrapInvite(ctx)
			if err != nil {
				return err
			}
			if created {
				logger.Info("no users yet; register the first admin with the bootstrap invite")
			}

			purged, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("failed to purge expired sessions", "error", err)
			} else if purged > 0 {
				logger.Info("purged expired sessions", "count", purged)
			}
			return nil
		},
	})
}

func newHTTPServer(lc fx.Lifecycle, cfg config.Config, router *gin.Engine, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // large uploads
		IdleTimeout:       120 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			logger.Info("server listening", "addr", server.Addr, "env", cfg.App.Env)
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return server.Shutdown(ctx)
		},
	})
	return server
}
