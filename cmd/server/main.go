package main

import (
	"log"

	"github.com/Mathumitha-create/grievance-cell/internal/bootstrap"
	"github.com/Mathumitha-create/grievance-cell/internal/config"
	"github.com/Mathumitha-create/grievance-cell/internal/server"
	"github.com/Mathumitha-create/grievance-cell/pkg/cache"
	"github.com/Mathumitha-create/grievance-cell/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, cfg.EmailDomain); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := cache.Connect()

	srv := server.New(cfg, db, redisClient)

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
