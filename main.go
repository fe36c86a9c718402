package main

import (
	"log"

	"guardian-bot/bot"
	"guardian-bot/config"
	"guardian-bot/handlers"
	"guardian-bot/server"
	"guardian-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	store, err := database.Init(cfg.DBPath, cfg.Settings.DefaultMuteHours)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer store.Close()

	b, err := bot.New(cfg, store)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	health := server.NewHealthServer(store)
	go func() {
		if err := health.Start(cfg.HealthAddr); err != nil {
			log.Printf("Health server stopped: %v", err)
		}
	}()
	defer health.Close()

	b.Run()

	b.Close()
}
