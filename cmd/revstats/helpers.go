package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ankitools/revstats/internal/config"
	"github.com/ankitools/revstats/internal/database"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to open the dataset store: %w", err)
	}
	return db, nil
}
