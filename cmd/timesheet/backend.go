package main

import (
	"context"
	"fmt"
	"os"

	"timesheet/internal/api"
	"timesheet/internal/cli"
	"timesheet/internal/config"
	"timesheet/internal/directory"
	"timesheet/internal/logging"
	"timesheet/internal/services"
)

// newApp builds the App for the configured backend. The local backend keeps
// the directory in SQLite and allows admin commands; the remote one talks to
// the hours service and is read-only apart from time records.
func newApp(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
	logging.Init(os.Stderr, cfg.Application.Verbose || logging.DebugEnabled())

	switch cfg.Directory.Backend {
	case config.BackendRemote:
		return newRemoteApp(ctx, cfg)
	default:
		return newLocalApp(cfg)
	}
}

func newLocalApp(cfg *config.Config) (*cli.App, func(), error) {
	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	logging.Logger().Debug("opened database", "path", cfg.GetDatabasePath())

	dir := directory.NewLocal(repo, cfg.Directory.UserID)
	container := services.NewServiceContainer(dir, cfg)
	app := cli.NewApp(api.NewBusinessAPI(container), api.NewAdminAPI(dir), cfg)

	cleanup := func() {
		if err := repo.Close(); err != nil {
			logging.Logger().Warn("failed to close database", "error", err)
		}
	}
	return app, cleanup, nil
}

func newRemoteApp(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
	client := directory.NewClient(ctx, cfg.Directory.BaseURL, cfg.Directory.Token, cfg.Directory.HTTPTimeout)

	if cfg.Directory.UserID <= 0 {
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to identify the current user: %w", err)
		}
		cfg.Directory.UserID = user.ID
		logging.Logger().Debug("resolved acting user", logging.KeyUser, user.ID, "username", user.Username)
	}

	container := services.NewServiceContainer(client, cfg)
	return cli.NewApp(api.NewBusinessAPI(container), nil, cfg), nil, nil
}
