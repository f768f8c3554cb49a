// Command import-legacy loads users, invites, exercises and trainings from the
// JSON files the app used before it had a database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"esk/training-app/internal/config"
	"esk/training-app/internal/legacy"
	"esk/training-app/internal/logging"
	"esk/training-app/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	dataDir := flag.String("data", "data", "directory holding the legacy *.json files")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.New("info", "text").Error("could not load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	if err := postgres.RunMigrations(db, logger); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	report, err := legacy.NewImporter(db, logger).ImportDir(ctx, *dataDir)
	if err != nil {
		logger.Error("import failed", "dir", *dataDir, "error", err)
		os.Exit(1)
	}

	for name, c := range map[string]legacy.Counts{
		"users":     report.Users,
		"invites":   report.Invites,
		"exercises": report.Exercises,
		"trainings": report.Trainings,
	} {
		logger.Info("imported", "kind", name, "read", c.Read, "created", c.Created, "existing", c.Existing, "failed", c.Failed)
	}
}
