package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"audio_conversion/config"
	"audio_conversion/internal/server"

	_ "audio_conversion/cmd/server/docs"
)

// @title           Audio Conversion API
// @version         1.0
// @description     Converts uploaded ogg/opus audio payloads to mp3.

// @host      localhost:8080
// @BasePath  /v1

func main() {
	// Local development convenience; a container already has the
	// environment populated.
	_ = godotenv.Load()

	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	ctx := context.Background()
	s := server.NewServer(cfg)
	s.Run(ctx, cfg)
}
