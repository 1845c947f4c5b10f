package main

import (
	"log"

	"recruiting-console/internal/bootstrap"
	"recruiting-console/internal/shared/config"
	"recruiting-console/internal/shared/server"
	"recruiting-console/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogJSON, cfg.LogDebug)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
