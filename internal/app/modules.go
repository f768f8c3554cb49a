// Package app wires the server together with fx.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"esk/training-app/internal/api"
	"esk/training-app/internal/config"
	"esk/training-app/internal/logging"
	"esk/training-app/internal/repository"
	"esk/training-app/internal/repository/postgres"
	"esk/training-app/internal/service"
	"esk/training-app/internal/storage"
	"esk/training-app/web"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// ConfigModule loads configuration once and derives the logger from it.
func ConfigModule(configPath string) fx.Option {
	return fx.Module("config",
		fx.Provide(
			func() (config.Config, error) { return config.LoadConfig(configPath) },
			func(cfg config.Config) *slog.Logger {
				return logging.New(cfg.Log.Level, cfg.Log.Format)
			},
		),
	)
}

var DatabaseModule = fx.Module("database",
	fx.Provide(provideDB),
)

func provideDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := postgres.Connect(context.Background(), cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing database connection")
			return postgres.Close(db)
		},
	})
	return db, nil
}

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		postgres.NewTransactor,
		postgres.NewUserRepository,
		postgres.NewInviteRepository,
		postgres.NewSessionRepository,
		postgres.NewTrainingRepository,
		postgres.NewExerciseRepository,
		postgres.NewUploadRepository,
	),
)

var StorageModule = fx.Module("storage",
	fx.Provide(provideFileStorage),
)

func provideFileStorage(cfg config.Config, logger *slog.Logger) (storage.FileStorage, error) {
	switch cfg.Upload.Driver {
	case "", "local":
		logger.Info("using local file storage", "dir", cfg.Upload.Dir)
		return storage.NewLocalStorage(cfg.Upload.Dir)
	case "s3":
		return storage.NewS3Storage(context.Background(), cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Upload.Driver)
	}
}

var ServiceModule = fx.Module("service",
	fx.Provide(
		provideAuthService,
		service.NewUserService,
		service.NewInviteService,
		service.NewTrainingService,
		service.NewExerciseService,
		provideUploadService,
	),
)

func provideAuthService(
	tx repository.Transactor,
	users repository.UserRepository,
	invites repository.InviteRepository,
	sessions repository.SessionRepository,
	cfg config.Config,
	logger *slog.Logger,
) service.AuthService {
	return service.NewAuthService(tx, users, invites, sessions, service.AuthOptions{
		BcryptCost: cfg.Auth.BcryptCost,
		SessionTTL: cfg.Session.MaxAge,
	}, logger)
}

func provideUploadService(fs storage.FileStorage, uploads repository.UploadRepository, cfg config.Config, logger *slog.Logger) service.UploadService {
	return service.NewUploadService(fs, uploads, cfg.Upload.MaxBytes, logger)
}

var HTTPModule = fx.Module("http",
	fx.Provide(
		func(
			auth service.AuthService,
			users service.UserService,
			invites service.InviteService,
			trainings service.TrainingService,
			exercises service.ExerciseService,
			uploads service.UploadService,
		) api.Services {
			return api.Services{
				Auth:     auth,
				Users:    users,
				Invites:  invites,
				Training: trainings,
				Exercise: exercises,
				Upload:   uploads,
			}
		},
		provideAssets,
		api.NewRouter,
		newHTTPServer,
	),
)

func provideAssets() (api.Assets, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return api.Assets{}, fmt.Errorf("parse templates: %w", err)
	}
	return api.Assets{Templates: tmpl, Static: web.Static()}, nil
}
