package main

import (
	"fmt"
	"os"

	_ "taskapi/docs"
	"taskapi/internal/config"
	"taskapi/internal/logger"
	"taskapi/internal/server"
)

// @title           Task API
// @version         1.0
// @description     REST API for users and the tasks assigned to them.

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("server initialization failed")
	}

	if err := s.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
