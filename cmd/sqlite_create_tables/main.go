package main

import (
	"context"

	"github.com/hetulpatel/moneylinearb/internal/config"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/storage/sqlite"
)

func main() {
	cfg := config.Load()
	logging.InitFromEnv()

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.CreateTables(context.Background()); err != nil {
		logging.Fatalf("create tables: %v", err)
	}
	logging.Infof("SQLite tables created at %s", store.Path())
}
