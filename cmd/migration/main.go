package main

import (
	"flag"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/drivers/logger"
	"hospital-service/internal/migration"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	log := logger.NewLogrusLogger(internalConfig.App.Env)

	db := database.NewPostgresDB(driverConfig)
	defer db.Close()

	if *down > 0 {
		n, err := migration.Down(db, *down)
		if err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		log.Infof("Rolled back %d migrations", n)
		return
	}

	n, err := migration.Up(db)
	if err != nil {
		log.Fatalf("Error executing migration: %v", err)
	}
	log.Infof("Applied %d migrations", n)
}
