package main

import (
	"context"
	"os"

	"github.com/lumen-chat/lumen/backend/go-services/internal/config"
	"github.com/lumen-chat/lumen/backend/go-services/internal/database"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// migrate applies the relational schema and exits.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	db, err := database.OpenSQL(context.Background(), cfg.Database.Driver, cfg.Database.URL, 1)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}
	logger.Infof("schema migrated (%s)", cfg.Database.Driver)
}
