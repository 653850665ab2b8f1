// Command api serves the treatment-design HTTP surface. With DATABASE_URL
// set, fitted designs persist to Postgres; otherwise they live in memory
// for the lifetime of the process.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gotreat/adapters/api"
	"gotreat/adapters/memory"
	"gotreat/adapters/postgres"
	"gotreat/internal"
	"gotreat/internal/config"
	"gotreat/ports"
)

func main() {
	_ = godotenv.Load()
	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config: %v", err)
		os.Exit(1)
	}

	var repo ports.DesignRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("connect to database: %v", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Error("migrate: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewDesignRepository(db)
		logger.Info("using postgres design repository")
	} else {
		repo = memory.NewDesignRepository()
		logger.Info("DATABASE_URL not set, using in-memory design repository")
	}

	server := api.NewServer(repo)
	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
